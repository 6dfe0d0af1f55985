package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeEntities_KeepsMaxConfidencePerKey(t *testing.T) {
	entities := []Entity{
		{Type: EntityPerson, Text: "John Smith", Confidence: 0.65, Origin: OriginRule},
		{Type: EntityPerson, Text: "john smith", Confidence: 0.85, Origin: OriginModel},
		{Type: EntityPerson, Text: "JOHN SMITH", Confidence: 0.70, Origin: OriginRule},
		{Type: EntityDate, Text: "January 5, 2024", Confidence: 0.95, Origin: OriginRule},
	}

	result := DedupeEntities(entities)
	require.Len(t, result, 2)

	assert.Equal(t, 0.85, result[0].Confidence)
	assert.Equal(t, OriginModel, result[0].Origin)
	assert.Equal(t, EntityDate, result[1].Type)
}

func TestDedupeEntities_SameTextDifferentTypeBothSurvive(t *testing.T) {
	entities := []Entity{
		{Type: EntityPerson, Text: "Acme Solutions", Confidence: 0.65},
		{Type: EntityOrganization, Text: "Acme Solutions", Confidence: 0.85},
	}

	result := DedupeEntities(entities)
	assert.Len(t, result, 2)
}

func TestDedupeEntities_EqualConfidenceFirstWins(t *testing.T) {
	entities := []Entity{
		{Type: EntityIdentifier, Text: "ABC-123", Confidence: 0.7, Start: 10},
		{Type: EntityIdentifier, Text: "abc-123", Confidence: 0.7, Start: 50},
	}

	result := DedupeEntities(entities)
	require.Len(t, result, 1)
	assert.Equal(t, 10, result[0].Start)
	assert.Equal(t, "ABC-123", result[0].Text)
}

func TestDedupeEntities_PreservesScanOrder(t *testing.T) {
	entities := []Entity{
		{Type: EntityDate, Text: "a", Confidence: 0.9},
		{Type: EntityMoney, Text: "b", Confidence: 0.9},
		{Type: EntityDate, Text: "c", Confidence: 0.9},
	}

	result := DedupeEntities(entities)
	require.Len(t, result, 3)
	assert.Equal(t, "a", result[0].Text)
	assert.Equal(t, "b", result[1].Text)
	assert.Equal(t, "c", result[2].Text)
}

func TestDedupeEntities_Empty(t *testing.T) {
	assert.Empty(t, DedupeEntities(nil))
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobQueued.IsTerminal())
	assert.False(t, JobProcessing.IsTerminal())
	assert.True(t, JobReady.IsTerminal())
	assert.True(t, JobFailed.IsTerminal())
}

func TestNewProcessingJob(t *testing.T) {
	job := NewProcessingJob("tpl-1", "sources/a.pdf", "a.pdf", "application/pdf")

	assert.Contains(t, job.ID, "job_")
	assert.Equal(t, JobQueued, job.Status)
	assert.Equal(t, "tpl-1", job.TemplateID)
	assert.Nil(t, job.StartedAt)
	assert.Empty(t, job.Error)
}
