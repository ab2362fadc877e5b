// internal/models/target.go
package models

// TargetName classifies an observed call.
type TargetName string

const (
	TargetPrimary   TargetName = "PRIMARY"
	TargetSecondary TargetName = "SECONDARY"
)

// TargetPattern matches a URL by substring containment.
type TargetPattern struct {
	Name    TargetName `json:"name"`
	Pattern string     `json:"pattern"`
}
