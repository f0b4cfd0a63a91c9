package taskstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livetask/internal/service"
	"livetask/internal/taskstore"
)

func TestFilter(t *testing.T) {
	tasks := []service.Task{
		{ID: "1", Title: "Buy milk"},
		{ID: "2", Title: "Call Bob"},
		{ID: "3", Title: "buy bread"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Buy milk", "Call Bob", "buy bread"}},
		{"  ", []string{"Buy milk", "Call Bob", "buy bread"}},
		{"BUY", []string{"Buy milk", "buy bread"}},
		{"bob", []string{"Call Bob"}},
		{"xyz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(taskstore.Filter(tasks, tt.query)))
		})
	}
}
