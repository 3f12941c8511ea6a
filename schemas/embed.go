// Package schemas holds the JSON Schemas for files the tools read.
package schemas

import _ "embed"

// JobCatalogPath is the repo-relative path of the catalog schema.
const JobCatalogPath = "schemas/job_catalog.schema.json"

// JobCatalog is the schema for offline job catalog files.
//
//go:embed job_catalog.schema.json
var JobCatalog string
