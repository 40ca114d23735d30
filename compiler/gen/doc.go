// Package gen renders a validated meta-model into Go source.
//
// Every class becomes a file named after it holding:
//
//   - a struct embedding the struct of its superclass, with one typed field
//     per declared property and one slice per contained class;
//   - for concrete contained classes, one key function per naming path,
//     building the hierarchical key of an instance from the naming values
//     of the classes along the path.
//
// A class reachable along several containment paths gets one key function
// per path, suffixed with the path's containers:
//
//	func ItemKeyViaWarehouseShelf(shelfName string, itemSKU string, itemIndex int) string
//	func ItemKeyViaWarehouse(itemSKU string, itemIndex int) string
//
// When two paths of a class share a naming signature, their keys are
// prefixed with the root class label, so that instances reached through
// different roots never share a key.
//
// Files are rendered with jennifer and written in parallel:
//
//	cfg, err := gen.NewConfig(gen.WithTarget("./out"))
//	g, err := gen.New(m, cfg)
//	paths, err := g.Generate(ctx)
package gen
