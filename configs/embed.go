// Package configs provides the embedded configuration template for repocks.
//
// The template is embedded at build time with go:embed so it ships in every
// distribution. 'repocks init' writes it as repocks.yaml, giving users a
// commented starting point instead of bare marshaled defaults.
package configs

import _ "embed"

// ConfigTemplate is the commented repocks.yaml template written by
// 'repocks init'.
//
//go:embed repocks.example.yaml
var ConfigTemplate string
