package archive

import "strings"

// Asset collects the members stored under one identifier
type Asset struct {
	Identifier string
	Pathname   string
	Meta       []byte
	Content    []byte
	HasContent bool // false for directories
}

// Contents is a package decoded into assets
type Contents struct {
	Assets []Asset  // in order of first appearance
	Loose  []Member // members outside any identifier, such as the icon
}

// Inventory groups members by the identifier prefix of their name.
// Unknown blob names under an identifier are ignored.
func Inventory(members []Member) Contents {
	var contents Contents
	index := make(map[string]int)

	for _, m := range members {
		id, blob, scoped := strings.Cut(m.Name, "/")
		if !scoped {
			contents.Loose = append(contents.Loose, m)
			continue
		}

		i, ok := index[id]
		if !ok {
			i = len(contents.Assets)
			index[id] = i
			contents.Assets = append(contents.Assets, Asset{Identifier: id})
		}

		asset := &contents.Assets[i]
		switch blob {
		case "asset.meta":
			asset.Meta = m.Data
		case "pathname":
			asset.Pathname = string(m.Data)
		case "asset":
			asset.Content = m.Data
			asset.HasContent = true
		}
	}

	return contents
}
