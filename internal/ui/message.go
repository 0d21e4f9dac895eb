package ui

import (
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// searchCompleteMsg carries the finished pipeline run into the model.
type searchCompleteMsg struct {
	result pipeline.Result
	err    error
}

// createCompleteMsg carries the finished playlist build into the model.
type createCompleteMsg struct {
	result *tasks.BuildResult
	err    error
}

// progressUpdateMsg wraps a single engine progress report.
type progressUpdateMsg tasks.ProgressUpdate
