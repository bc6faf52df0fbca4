package output

import "strings"

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "
)

// TreeGroup is one labeled branch of a tree, e.g. an install category and
// its entries. Items render in the given order.
type TreeGroup struct {
	Name  string
	Items []string
}

// RenderTree renders a two-level tree rooted at title. Empty groups are
// skipped unless showEmpty is set, in which case they render with a
// "(none)" leaf.
func RenderTree(title string, groups []TreeGroup, showEmpty bool) string {
	visible := make([]TreeGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Items) > 0 || showEmpty {
			visible = append(visible, g)
		}
	}

	var sb strings.Builder
	sb.WriteString(StyleHeader.Render(title))
	sb.WriteString("\n")

	for i, g := range visible {
		lastGroup := i == len(visible)-1
		connector, childPrefix := treeEdge, treeVert
		if lastGroup {
			connector, childPrefix = treeLast, treeSpace
		}

		sb.WriteString(connector)
		sb.WriteString(StyleAction.Render(g.Name))
		sb.WriteString("\n")

		items := g.Items
		if len(items) == 0 {
			items = []string{StyleDim.Render("(none)")}
		}
		for j, item := range items {
			leaf := treeEdge
			if j == len(items)-1 {
				leaf = treeLast
			}
			sb.WriteString(childPrefix)
			sb.WriteString(leaf)
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
