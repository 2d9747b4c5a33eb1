// Package config loads wcdk project configuration.
//
// Configuration lives in wcdk.yaml (or wcdk.json / wcdk.toml) at the project
// root. Every key can be overridden from the environment with the WCDK_
// prefix, dots replaced by underscores:
//
//	WCDK_DEV_PORT=4000 WCDK_LOG_LEVEL=debug wcdk dev
//
// # Schema
//
//	name: my-components
//	source:
//	  dir: components
//	  extension: .wcdk
//	dev:
//	  host: localhost
//	  port: 3000
//	  hot_reload: true
//	  debounce: 100ms
//	build:
//	  output: dist
//	publish:
//	  bucket: my-bucket
//	  prefix: components/v1
//	  region: us-east-1
//	log:
//	  level: info
//	  format: text
package config
