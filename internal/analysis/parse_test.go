package analysis

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "bare object",
			content: `{"primaryIntent": "feature", "confidence": 0.9}`,
		},
		{
			name:    "object in code fence",
			content: "```json\n{\"primaryIntent\": \"bugfix\", \"confidence\": 0.8}\n```",
		},
		{
			name:    "object with surrounding prose",
			content: "Here is my analysis:\n{\"primaryIntent\": \"refactor\", \"confidence\": 0.7}\nLet me know if you need more.",
		},
		{
			name:    "no json at all",
			content: "I cannot analyze this change.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw rawIntent
			err := extractJSON(tt.content, &raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && raw.PrimaryIntent == "" {
				t.Error("expected primaryIntent to be populated")
			}
		})
	}
}

func TestExtractJSON_Array(t *testing.T) {
	content := "Analysis complete.\n```json\n[{\"severity\": \"high\", \"category\": \"security\", \"confidence\": 0.9}]\n```"
	var raw []rawImpact
	if err := extractJSON(content, &raw); err != nil {
		t.Fatalf("extractJSON() error = %v", err)
	}
	if len(raw) != 1 || raw[0].Severity != "high" {
		t.Errorf("parsed = %+v", raw)
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		content string
		want    int
		wantErr bool
	}{
		{"15", 15, false},
		{"The score is 22 out of 30.", 22, false},
		{"0", 0, false},
		{"no digits here", 0, true},
	}
	for _, tt := range tests {
		got, err := extractNumber(tt.content)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractNumber(%q) error = %v, wantErr %v", tt.content, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractNumber(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n[]\n```", "[]"},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.content); got != tt.want {
				t.Errorf("stripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
