// Package build compiles component sources into a registrable bundle.
//
// This package handles:
//   - Transforming one source into a Module (definition, template AST, element name)
//   - Compiling every source under the source directory, recording per-file failures
//   - Skipping sources whose content hash has not changed since the previous build
//   - Writing bundle.cbor and manifest.json
//   - Loading a bundle back into a component.Registry
//
// # Usage
//
//	builder := build.New(cfg, build.Options{Logger: logger})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Failures {
//	    errors.Print(os.Stderr, errors.Diagnose(f.Err, f.File))
//	}
//
// # Output Structure
//
//	dist/
//	├── bundle.cbor     # Modules, CBOR encoded
//	└── manifest.json   # Element names, source files and content hashes
//
// # Manifest
//
//	{
//	  "version": 1,
//	  "bundle": "bundle.cbor",
//	  "components": [
//	    {"name": "my-counter", "file": "counter.wcdk", "hash": "9f86d081884c7d65"}
//	  ]
//	}
package build
