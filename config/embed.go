package config

import _ "embed"

//go:embed example-config.yaml
var ExampleYAML string
