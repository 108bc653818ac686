// Package sourcefile loads toolbox configuration from YAML, JSON (comments allowed), or TOML files.
//
// Format is auto-detected from extension (.yaml, .yml, .json, .jsonc, .toml).
//
// Document layout (YAML shown):
//
//	properties:
//	  locale: en_US
//	toolboxes:
//	  - scope: request
//	    properties:
//	      xhtml: true
//	    tools:
//	      - key: math
//	        class: tools.MathTool
//	        invalidScopes: [session]
//	        properties:
//	          precision: {value: "4", type: integer}
//
// Example:
//
//	source := sourcefile.New("tools.yaml", sourcefile.Options{Required: true})
//	loader := toolconf.NewLoader().WithSource(source)
package sourcefile
