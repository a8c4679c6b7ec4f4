package output

import (
	"fmt"
	"strings"

	"github.com/marcus/bastion/internal/models"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string
	Title    string
	Kind     models.OrgKind
	Plan     string
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth int  // 0 = unlimited
	ShowPlan bool // Whether to show the billing plan
	ShowKind bool // Whether to show the LE marker
}

// kindMark returns a kind indicator symbol
func kindMark(k models.OrgKind) string {
	if k == models.OrgKindLE {
		return " ◆"
	}
	return ""
}

// ScopeTree builds the tree for an organization scope: the scope's own
// organization as root with its clients beneath it.
func ScopeTree(scope models.OrgScope) TreeNode {
	var root TreeNode
	if scope.Org != nil {
		root = orgNode(*scope.Org)
	}
	for _, c := range scope.Clients {
		root.Children = append(root.Children, orgNode(c))
	}
	return root
}

func orgNode(o models.Organization) TreeNode {
	return TreeNode{ID: o.ClientName, Title: o.OrgName, Kind: o.Kind, Plan: o.Plan}
}

// RenderTree renders a tree starting from a single root node, root line first.
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := []string{nodeLabel(root, opts)}
	lines = append(lines, renderTreeNodes(root.Children, opts, 0, "")...)
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
// Useful for embedding trees in other output
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

func nodeLabel(node TreeNode, opts TreeRenderOptions) string {
	parts := []string{node.ID + ":", node.Title}
	if opts.ShowPlan && node.Plan != "" {
		parts = append(parts, fmt.Sprintf("[%s]", node.Plan))
	}
	label := strings.Join(parts, " ")
	if opts.ShowKind {
		label += kindMark(node.Kind)
	}
	return label
}

// renderTreeNodes recursively renders tree nodes
func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string

	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := "├── "
		if isLast {
			connector = "└── "
		}

		lines = append(lines, prefix+connector+nodeLabel(node, opts))

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}

		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}

	return lines
}
