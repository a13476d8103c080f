package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/h0rv/azboards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, &domain.Result{WorkItems: []domain.WorkItem{
		{ID: 1, Title: "Broken link", State: "New", Type: "Bug", AssignedTo: "Jane Doe"},
		{ID: 2, Title: strings.Repeat("long ", 30), State: "Active", Type: "Bug", AssignedTo: domain.Unassigned},
	}})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"ID", "Assigned To", "Broken link", "Jane Doe", "Unassigned", "…", "2 work items"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, domain.EmptyResult()))
	assert.Equal(t, domain.NoResultsMessage+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, &domain.Result{WorkItems: []domain.WorkItem{
		{ID: 7, Title: "T", State: "New", Type: "Task", AssignedTo: "Bob"},
	}}))
	assert.JSONEq(t, `{"workItems":[{"ID":7,"Title":"T","State":"New","Type":"Task","AssignedTo":"Bob"}],"count":1}`, buf.String())

	buf.Reset()
	require.NoError(t, writeJSON(&buf, domain.EmptyResult()))
	assert.JSONEq(t, `{"workItems":[],"count":0,"empty":true,"message":"No work items found."}`, buf.String())
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "fetch")
}

func TestFetchCmd_RequiresOrgAndProject(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"fetch", "--pat", "x"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "org")
}
