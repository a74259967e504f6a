// Package common holds identifiers shared across the mint's services.
package common

// PackageName identifies this module in logs and metrics.
const PackageName = "dmto-core"
