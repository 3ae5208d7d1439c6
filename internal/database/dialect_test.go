package database

import "testing"

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT id FROM students",
			want:  "SELECT id FROM students",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM students WHERE id = ?",
			want:  "SELECT * FROM students WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO weekly_records (student_id, week, score) VALUES (?, ?, ?)",
			want:  "INSERT INTO weekly_records (student_id, week, score) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDialectDriverNames(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{NewSQLiteDialect(), "sqlite3"},
		{NewPostgresDialect(), "postgres"},
		{NewMySQLDialect(), "mysql"},
	}
	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.want {
			t.Errorf("DriverName() = %q, want %q", got, tt.want)
		}
	}
}

func TestPostgresRewritesQueries(t *testing.T) {
	d := NewPostgresDialect()
	got := d.RewriteQuery("UPDATE students SET name = ? WHERE id = ?")
	want := "UPDATE students SET name = $1 WHERE id = $2"
	if got != want {
		t.Errorf("RewriteQuery = %q, want %q", got, want)
	}
}

func TestSQLiteAndMySQLKeepPlaceholders(t *testing.T) {
	query := "SELECT * FROM students WHERE class_id = ?"
	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite RewriteQuery changed query: %q", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql RewriteQuery changed query: %q", got)
	}
}

func TestMySQLDSNAddsParseTime(t *testing.T) {
	d := NewMySQLDialect()
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "bare dsn",
			url:  "user:pass@tcp(localhost:3306)/readalong",
			want: "user:pass@tcp(localhost:3306)/readalong?parseTime=true",
		},
		{
			name: "existing params",
			url:  "user:pass@tcp(localhost:3306)/readalong?charset=utf8mb4",
			want: "user:pass@tcp(localhost:3306)/readalong?charset=utf8mb4&parseTime=true",
		},
		{
			name: "already set",
			url:  "user:pass@tcp(localhost:3306)/readalong?parseTime=true",
			want: "user:pass@tcp(localhost:3306)/readalong?parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DSN(DialectConfig{URL: tt.url}); got != tt.want {
				t.Errorf("DSN(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
