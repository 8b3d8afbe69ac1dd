// internal/app/features/attachments/handler_test.go
package attachments

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name passes", "report.pdf", "report.pdf"},
		{"path components stripped", "../../etc/passwd", "passwd"},
		{"spaces replaced", "my file.txt", "my_file.txt"},
		{"unicode replaced", "稟議書.pdf", "_________.pdf"},
		{"empty becomes file", "", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
