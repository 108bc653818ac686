// Package sourceenv loads configuration overrides from environment variables.
//
// Key normalization: FOO__BAR → foo.bar, FOO_BAR → foo_bar. After the prefix is
// stripped, a one-level key sets a factory property and a two-level key
// (SCOPE__NAME) sets a property on the toolbox for that scope. Deeper keys are skipped.
//
// Example:
//
//	source := sourceenv.New(sourceenv.Options{Prefix: "TOOLS_"})
//	loader := toolconf.NewLoader().WithSource(source)
package sourceenv
