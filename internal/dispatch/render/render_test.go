package render

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		body string
		vars map[string]string
		want string
	}{
		{
			name: "single variable",
			body: "Chào {{name}}, hẹn gặp lại.",
			vars: map[string]string{"name": "Ngọc"},
			want: "Chào Ngọc, hẹn gặp lại.",
		},
		{
			name: "repeated variable",
			body: "{{name}} ơi, {{name}} nhớ mang hồ sơ nhé.",
			vars: map[string]string{"name": "Minh"},
			want: "Minh ơi, Minh nhớ mang hồ sơ nhé.",
		},
		{
			name: "whitespace inside braces",
			body: "SĐT: {{ phone }}",
			vars: map[string]string{"phone": "+84912345678"},
			want: "SĐT: +84912345678",
		},
		{
			name: "unresolved variable renders empty",
			body: "Chào {{name}}, mã của bạn là {{code}}.",
			vars: map[string]string{"name": "Lan"},
			want: "Chào Lan, mã của bạn là .",
		},
		{
			name: "no placeholders",
			body: "Thông báo chung.",
			vars: map[string]string{"name": "x"},
			want: "Thông báo chung.",
		},
		{
			name: "nil vars",
			body: "Chào {{name}}",
			vars: nil,
			want: "Chào ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.body, tt.vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Chào {{name}}, SĐT {{phone}}, {{name}} nhé.")
	want := []string{"name", "phone"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}

	if got := Placeholders("không có biến"); got != nil {
		t.Errorf("Placeholders() = %v, want nil", got)
	}
}
