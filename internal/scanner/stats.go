package scanner

const bytesPerGB = 1024 * 1024 * 1024

// Summarize aggregates health, stack, and type counts across projects.
func Summarize(projects []Project) Stats {
	st := Stats{
		TotalProjects:      len(projects),
		TechStackBreakdown: make(map[string]int),
		ProjectTypes:       make(map[ProjectType]int),
	}
	if len(projects) == 0 {
		return st
	}

	var totalHealth int
	var totalSize int64
	for _, p := range projects {
		totalHealth += p.HealthScore
		totalSize += p.Size
		if p.HasGit {
			st.HasGit++
		}
		if p.HasReadme {
			st.HasReadme++
		}
		for _, tech := range p.Stack {
			st.TechStackBreakdown[tech]++
		}
		t := p.Type
		if t == "" {
			t = "unknown"
		}
		st.ProjectTypes[t]++
	}

	st.AverageHealth = float64(totalHealth) / float64(len(projects))
	st.TotalSizeGB = float64(totalSize) / bytesPerGB
	return st
}

// AverageHealth returns the mean health score, or 0 for an empty list.
func AverageHealth(projects []Project) float64 {
	return Summarize(projects).AverageHealth
}
