package workbench

import "github.com/google/uuid"

// GenerateID returns a random identifier such as "proc-6f1c...".
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
