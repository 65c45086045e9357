package catalog

// TaxonomyNode is one entry of the seed taxonomy. Children of a level-two node are leaves.
type TaxonomyNode struct {
	Name     string
	Children []TaxonomyNode
}

func leaves(names ...string) []TaxonomyNode {
	nodes := make([]TaxonomyNode, len(names))
	for i, n := range names {
		nodes[i] = TaxonomyNode{Name: n}
	}
	return nodes
}

// DefaultTaxonomy is the fixed classification loaded by the administrative import.
// 5 parents, 45 leaves.
func DefaultTaxonomy() []TaxonomyNode {
	return []TaxonomyNode{
		{Name: "Mobilier", Children: []TaxonomyNode{
			{Name: "Assises", Children: leaves("Canapés", "Fauteuils", "Chaises", "Tabourets")},
			{Name: "Tables", Children: leaves("Tables à manger", "Tables basses", "Consoles", "Bureaux")},
			{Name: "Rangements", Children: leaves("Buffets", "Bibliothèques", "Commodes")},
		}},
		{Name: "Luminaires", Children: []TaxonomyNode{
			{Name: "Suspensions", Children: leaves("Suspensions simples", "Lustres")},
			{Name: "Appliques", Children: leaves("Appliques murales", "Liseuses")},
			{Name: "Lampes", Children: leaves("Lampes de table", "Lampadaires", "Lampes de bureau")},
		}},
		{Name: "Revêtements", Children: []TaxonomyNode{
			{Name: "Sols", Children: leaves("Parquet", "Carrelage", "Moquette", "Béton ciré")},
			{Name: "Murs", Children: leaves("Peinture", "Papier peint", "Faïence", "Enduits décoratifs")},
		}},
		{Name: "Textiles", Children: []TaxonomyNode{
			{Name: "Rideaux", Children: leaves("Voilages", "Rideaux occultants", "Stores")},
			{Name: "Tapis", Children: leaves("Tapis en laine", "Tapis d'extérieur")},
			{Name: "Linge de maison", Children: leaves("Coussins", "Plaids", "Linge de lit")},
		}},
		{Name: "Sanitaires & Cuisine", Children: []TaxonomyNode{
			{Name: "Salle de bain", Children: leaves("Vasques", "Robinetterie", "Baignoires", "Douches", "WC")},
			{Name: "Cuisine", Children: leaves("Éviers", "Mitigeurs de cuisine", "Électroménager")},
			{Name: "Accessoires", Children: leaves("Miroirs", "Patères", "Porte-serviettes")},
		}},
	}
}

// BuildTree turns seed nodes into entities. Display orders start at 1 and follow
// insertion order within each owner.
func BuildTree(nodes []TaxonomyNode) ([]*ParentCategory, error) {
	tree := make([]*ParentCategory, 0, len(nodes))
	for i, pn := range nodes {
		parent, err := NewParentCategory(pn.Name, i+1)
		if err != nil {
			return nil, err
		}
		for _, sn := range pn.Children {
			sub, err := parent.AddSubCategory(sn.Name)
			if err != nil {
				return nil, err
			}
			for _, ln := range sn.Children {
				if _, err := sub.AddSubCategory(ln.Name); err != nil {
					return nil, err
				}
			}
		}
		tree = append(tree, parent)
	}
	return tree, nil
}

// CountTree returns the number of entities at each level
func CountTree(tree []*ParentCategory) TaxonomyCounts {
	var c TaxonomyCounts
	c.Parents = int64(len(tree))
	for _, p := range tree {
		c.SubCategories1 += int64(len(p.SubCategories))
		c.SubCategories2 += int64(p.LeafCount())
	}
	return c
}

// CountSeedLeaves sums the leaf arrays of the seed nodes
func CountSeedLeaves(nodes []TaxonomyNode) int {
	n := 0
	for _, p := range nodes {
		for _, s := range p.Children {
			n += len(s.Children)
		}
	}
	return n
}
