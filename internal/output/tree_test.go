package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTree_SkipsEmptyGroups(t *testing.T) {
	out := RenderTree("python/py311", []TreeGroup{
		{Name: "packages", Items: []string{"ripgrep", "jq"}},
		{Name: "urls"},
		{Name: "files", Items: []string{"/src/app/requirements.txt"}},
	}, false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{
		"python/py311",
		"├── packages",
		"│   ├── ripgrep",
		"│   └── jq",
		"└── files",
		"    └── /src/app/requirements.txt",
	}, lines)
}

func TestRenderTree_ShowEmpty(t *testing.T) {
	out := RenderTree("go", []TreeGroup{{Name: "urls"}}, true)
	assert.Contains(t, out, "└── urls")
	assert.Contains(t, out, "(none)")
}
