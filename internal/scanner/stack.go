package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// techIndicator maps a technology tag to the relative paths whose existence
// marks it present.
type techIndicator struct {
	tech  string
	paths []string
}

// techIndicators is the fixed detection registry. Order only affects the
// insertion order of tags in Project.Stack.
//
// react is keyed on package.json existence alone, so nearly every
// manifest-bearing directory is tagged react. Type inference depends on this.
var techIndicators = []techIndicator{
	{"nextjs", []string{"next.config.js", "next.config.mjs", "next.config.ts"}},
	{"react", []string{"package.json"}},
	{"python", []string{"requirements.txt", "setup.py", "pyproject.toml"}},
	{"typescript", []string{"tsconfig.json"}},
	{"docker", []string{"Dockerfile", "docker-compose.yml"}},
	{"prisma", []string{filepath.Join("prisma", "schema.prisma")}},
	{"tailwind", []string{"tailwind.config.js", "tailwind.config.ts"}},
	{"flask", []string{"app.py", "wsgi.py"}},
	{"django", []string{"manage.py", "settings.py"}},
}

// detectStack returns the technologies whose indicators exist directly under dir.
func detectStack(dir string) []string {
	stack := []string{}
	for _, ind := range techIndicators {
		for _, rel := range ind.paths {
			if exists(filepath.Join(dir, rel)) {
				stack = append(stack, ind.tech)
				break
			}
		}
	}
	return stack
}

// manifest holds the package.json fields the scanner cares about.
type manifest struct {
	name    *string
	version *string
	deps    map[string]bool
	// depsOK is false when dependencies or devDependencies is present but not an object.
	depsOK bool
}

// readManifest parses dir/package.json. ok is false when the file is missing
// or is not a JSON object.
func readManifest(dir string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return manifest{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return manifest{}, false
	}

	m := manifest{deps: make(map[string]bool), depsOK: true}
	m.name = scalarString(raw["name"])
	m.version = scalarString(raw["version"])

	for _, key := range []string{"dependencies", "devDependencies"} {
		v, present := raw[key]
		if !present {
			continue
		}
		deps, ok := v.(map[string]any)
		if !ok {
			m.depsOK = false
			continue
		}
		for name := range deps {
			m.deps[name] = true
		}
	}
	return m, true
}

// scalarString renders a manifest scalar as a string. Numbers and booleans
// are kept only when truthy, so "version": 0 does not earn the version bonus.
func scalarString(v any) *string {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case float64:
		if v == 0 {
			return nil
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if !v {
			return nil
		}
		s = "true"
	default:
		return nil
	}
	return &s
}

// applyManifest copies manifest metadata onto p and appends react when it is
// a declared dependency not already in the stack.
func applyManifest(p *Project, m manifest) {
	p.PackageName = m.name
	p.Version = m.version
	if m.depsOK && m.deps["react"] && !p.HasTech("react") {
		p.Stack = append(p.Stack, "react")
	}
}

// exists reports whether path exists, following symlinks.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
