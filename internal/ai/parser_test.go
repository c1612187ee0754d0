package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

func TestParseResponse_Ready(t *testing.T) {
	const readyJSON = `{"status":"ready","task_title":"Fix login bug","task_text":"Users cannot log in.","jira_params":{"project":"AUTH","type":"Bug","priority":"High","labels":["auth","login"]}}`

	want := models.NewReadyResult("Fix login bug", "Users cannot log in.", models.TicketParams{
		"project":  models.StringValue("AUTH"),
		"type":     models.StringValue("Bug"),
		"priority": models.StringValue("High"),
		"labels":   models.ListValue("auth", "login"),
	})

	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain json", raw: readyJSON},
		{name: "surrounding whitespace", raw: "\n\n  " + readyJSON + "  \n"},
		{name: "json fence", raw: "```json\n" + readyJSON + "\n```"},
		{name: "bare fence", raw: "```\n" + readyJSON + "\n```"},
		{name: "leading and trailing prose", raw: "Sure! Here is the ticket:\n" + readyJSON + "\nLet me know if you need changes."},
		{name: "fence with trailing prose", raw: "```json\n" + readyJSON + "\n```\nHope this helps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, ParseResponse(tt.raw))
		})
	}
}

func TestParseResponse_ReadyDefaults(t *testing.T) {
	got := ParseResponse(`{"status":"ready"}`)

	assert.Equal(t, models.StatusReady, got.Status)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, "", got.Body)
	assert.NotNil(t, got.Params)
	assert.Empty(t, got.Params)
	assert.Nil(t, got.Questions)
}

func TestParseResponse_NeedClarification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "one question",
			raw:  `{"status":"need_clarification","questions":["Who reported it?"]}`,
			want: []string{"Who reported it?"},
		},
		{
			name: "three questions keep order",
			raw:  "```json\n{\"status\":\"need_clarification\",\"questions\":[\"A?\",\"B?\",\"C?\"]}\n```",
			want: []string{"A?", "B?", "C?"},
		},
		{
			name: "missing questions",
			raw:  `{"status":"need_clarification"}`,
			want: []string{},
		},
		{
			name: "blank entries dropped",
			raw:  `{"status":"need_clarification","questions":["  ","Which browser?",""]}`,
			want: []string{"Which browser?"},
		},
		{
			name: "single string question",
			raw:  `{"status":"need_clarification","questions":"Which environment?"}`,
			want: []string{"Which environment?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.raw)
			assert.Equal(t, models.StatusNeedClarification, got.Status)
			assert.Equal(t, tt.want, got.Questions)
		})
	}
}

func TestParseResponse_UnknownStatus(t *testing.T) {
	t.Run("uses task fields when present", func(t *testing.T) {
		got := ParseResponse(`{"status":"done","task_title":"T","task_text":"B","jira_params":{"priority":"Low"}}`)

		assert.Equal(t, models.NewReadyResult("T", "B", models.TicketParams{"priority": models.StringValue("Low")}), got)
	})

	t.Run("dumps the object when text is missing", func(t *testing.T) {
		got := ParseResponse(`{"summary":"Login broken","severity":2}`)

		assert.Equal(t, models.StatusReady, got.Status)
		assert.Equal(t, "Task", got.Title)
		assert.Equal(t, "{\n  \"summary\": \"Login broken\",\n  \"severity\": 2\n}", got.Body)
		assert.Empty(t, got.Params)
	})

	t.Run("non string status", func(t *testing.T) {
		got := ParseResponse(`{"status":1,"task_text":"body"}`)

		assert.Equal(t, "Task", got.Title)
		assert.Equal(t, "body", got.Body)
	})

	t.Run("localized fallback title", func(t *testing.T) {
		got := NewResponseParser(FallbackTitle("ru")).Parse(`{"foo":"bar"}`)
		assert.Equal(t, "Задача", got.Title)
	})
}

func TestParseResponse_NoJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I could not understand the request, please add details."},
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   \n\t"},
		{name: "broken object", raw: "Here: {\"status\": \"ready\", \"task_title\": "},
		{name: "braces in wrong order", raw: "} nothing {"},
		{name: "top level array", raw: `["not","an","object"]`},
		{name: "top level string", raw: `"just a string"`},
		{name: "fence without json", raw: "```\nno json here\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.ModelResult
			assert.NotPanics(t, func() { got = ParseResponse(tt.raw) })
			assert.Equal(t, models.StatusReady, got.Status)
			assert.Equal(t, "Task", got.Title)
			assert.Equal(t, tt.raw, got.Body, "body must be the untouched original text")
			assert.Empty(t, got.Params)
		})
	}
}

func TestParseResponse_ParamsCoercion(t *testing.T) {
	got := ParseResponse(`{"status":"ready","task_title":"T","task_text":"B","jira_params":{"story_points":5,"flag":true,"labels":"a, b"}}`)

	assert.Equal(t, "5", got.Params.String("story_points"))
	assert.Equal(t, "true", got.Params.String("flag"))
	assert.Equal(t, []string{"a", "b"}, got.Params.List("labels"))
}

func TestParseResponse_ParamsNotObject(t *testing.T) {
	got := ParseResponse(`{"status":"ready","task_title":"T","jira_params":["x"]}`)

	assert.Equal(t, "T", got.Title)
	assert.NotNil(t, got.Params)
	assert.Empty(t, got.Params)
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := ExtractJSONObject("noise {\"team_name\": null, \"description\": \"Deploy fix\"} noise")

	assert.True(t, ok)
	assert.False(t, obj.Has("team_name"))
	assert.Equal(t, "Deploy fix", obj.String("description"))

	_, ok = ExtractJSONObject("nothing here")
	assert.False(t, ok)
}
