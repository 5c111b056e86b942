package chat

import "testing"

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "go north")

	if msg.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("message should get a fresh ID")
	}
	if msg.Timestamp.IsZero() {
		t.Error("message should be timestamped")
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"user", Message{Role: RoleUser, Content: "hi"}, false},
		{"ai", Message{Role: RoleAI, Content: "hello"}, false},
		{"system", Message{Role: RoleSystem, Content: "notice"}, false},
		{"unknown role", Message{Role: "narrator", Content: "hi"}, true},
		{"empty content", Message{Role: RoleUser, Content: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToPrompt(t *testing.T) {
	ai := Message{Role: RoleAI, Content: "The path forks."}
	if p := ai.ToPrompt(); p.Role != PromptRoleAssistant || p.Content != ai.Content {
		t.Errorf("ToPrompt() = %+v, want assistant role", p)
	}

	user := Message{Role: RoleUser, Content: "left"}
	if p := user.ToPrompt(); p.Role != PromptRoleUser {
		t.Errorf("ToPrompt() role = %q, want user", p.Role)
	}
}
