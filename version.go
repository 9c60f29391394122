// Package woskit groups tools for processing Web of Science tagged export
// files: parsing, language filtering, and a conversion and merge workflow.
package woskit

// Version of the woskit tools.
const Version = "0.1.0"
