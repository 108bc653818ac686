// Package toolconf provides a mergeable, hierarchical configuration model for toolboxes of tools.
//
// Quick Start:
//
//	tb := toolconf.NewToolboxConfiguration() // scope "request"
//	tool := toolconf.NewToolConfiguration("math")
//	tool.SetInvalidScopes("session")
//	_ = tool.SetTypedProperty("precision", "4", toolconf.TypeInteger)
//	_ = tb.AddTool(tool)
//
//	factory := toolconf.NewFactoryConfiguration()
//	_ = factory.AddToolbox(tb)
//	err := factory.Validate(toolconf.DefaultScopes())
//
// Merging: adding a property or child whose name/key already exists replaces it, so
// a later configuration wins over an earlier one. Merge, MergeCompound, MergeToolboxes
// and MergeFactories do the same without modifying their arguments.
//
// Validation is explicit: build and merge first, then call Validate once before use.
// Conversion failures and scope conflicts are only reported by Validate.
//
// See sourcefile and sourceenv for loading, and example_test.go for detailed usage.
package toolconf
