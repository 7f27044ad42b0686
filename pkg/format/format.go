// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package format renders toolkit data as human-readable text for reports and
// command line diagnostics.
package format

import (
	"fmt"
	"sort"
	"strings"
)

// ListOptions gathers the options controlling how ConciseList renders a list.
type ListOptions struct {
	// ItemThreshold is the number of items beyond which the listing is truncated
	ItemThreshold int

	// Pad is the number of whitespace characters prepended to every continuation line
	Pad int

	// Quote requests each item to be rendered as a quoted Go string literal
	Quote bool

	// ShowCount appends the total number of items to a truncated listing
	ShowCount bool
}

// DefaultListOptions returns the options ConciseList uses when it receives a
// nil options structure.
func DefaultListOptions() *ListOptions {
	return &ListOptions{
		ItemThreshold: 4,
		Pad:           16,
		Quote:         true,
		ShowCount:     true,
	}
}

// ConciseList renders a list of items as a single literal-style string. Lists
// longer than the threshold are truncated to the first two and the last item,
// with an ellipsis in between, so that large lists (e.g., hundreds of input
// files) remain readable in a report.
func ConciseList(items []string, opts *ListOptions) string {
	if opts == nil {
		opts = DefaultListOptions()
	}

	render := func(item string) string {
		if opts.Quote {
			return fmt.Sprintf("%q", item)
		}
		return item
	}

	if len(items) == 0 {
		return "[]"
	}

	pad := strings.Repeat(" ", opts.Pad)
	var b strings.Builder

	if opts.ItemThreshold > 0 && len(items) > opts.ItemThreshold {
		b.WriteString("[" + render(items[0]) + ",\n")
		b.WriteString(pad + render(items[1]) + ",\n")
		b.WriteString(pad + "   ...\n")
		b.WriteString(pad + render(items[len(items)-1]) + "]")
		if opts.ShowCount {
			b.WriteString(fmt.Sprintf(" <%d items>", len(items)))
		}
		return b.String()
	}

	b.WriteString("[")
	for i, item := range items {
		if i > 0 {
			b.WriteString(",\n" + pad)
		}
		b.WriteString(render(item))
	}
	b.WriteString("]")
	return b.String()
}

// Tree renders a nested mapping as a tree diagram using branch drawing
// characters. Values can be nested map[string]interface{} mappings, []string
// leaf lists or plain values rendered as "key: value" leaves. Keys are walked
// in sorted order so the rendering of a given mapping is always the same.
func Tree(data map[string]interface{}) string {
	var b strings.Builder
	subtree(&b, data, "")
	return b.String()
}

func subtree(b *strings.Builder, data map[string]interface{}, prefix string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		branch := "├── "
		childPrefix := prefix + "│   "
		if i == len(keys)-1 {
			branch = "└── "
			childPrefix = prefix + "    "
		}

		switch value := data[key].(type) {
		case map[string]interface{}:
			b.WriteString(prefix + branch + key + "\n")
			subtree(b, value, childPrefix)
		case []string:
			b.WriteString(prefix + branch + key + "\n")
			for j, item := range value {
				leaf := "├── "
				if j == len(value)-1 {
					leaf = "└── "
				}
				b.WriteString(childPrefix + leaf + item + "\n")
			}
		default:
			b.WriteString(prefix + branch + fmt.Sprintf("%s: %v", key, value) + "\n")
		}
	}
}
