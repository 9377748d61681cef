package pipeline

import (
	"fmt"

	"webdeck/internal/models"
)

func infoLine(format string, args ...any) models.LogEntry {
	return models.LogEntry{Kind: models.LogInfo, Text: fmt.Sprintf(format, args...)}
}

func errorLine(err error) models.LogEntry {
	return models.LogEntry{Kind: models.LogError, Text: err.Error()}
}
