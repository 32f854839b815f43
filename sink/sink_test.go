package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid simple path",
			path:    "shared/shared_types.go",
			wantErr: false,
		},
		{
			name:    "valid remote path",
			path:    "store-remote/store-remote.go",
			wantErr: false,
		},
		{
			name:    "valid single file",
			path:    "consts.go",
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "empty",
		},
		{
			name:    "absolute path",
			path:    "/tmp/out.go",
			wantErr: true,
			errMsg:  "absolute paths not allowed",
		},
		{
			name:    "path traversal",
			path:    "gen/../../escape.go",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "path starting with ..",
			path:    "../out.go",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "current dir prefix",
			path:    "./out.go",
			wantErr: true,
			errMsg:  "not clean",
		},
		{
			name:    "double slashes",
			path:    "gen//out.go",
			wantErr: true,
			errMsg:  "not clean",
		},
		{
			name:    "trailing slash",
			path:    "gen/out/",
			wantErr: true,
			errMsg:  "not clean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and read back", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("package demo\n")
		if err := s.WriteFile(ctx, "demo_types.go", content); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if got := s.Get("demo_types.go"); string(got) != string(content) {
			t.Errorf("Get() = %q, want %q", got, content)
		}
	})

	t.Run("missing file returns nil", func(t *testing.T) {
		s := NewMemorySink()
		if got := s.Get("nope.go"); got != nil {
			t.Errorf("Get() = %v, want nil", got)
		}
	})

	t.Run("stored data is isolated from caller", func(t *testing.T) {
		s := NewMemorySink()
		data := []byte("original")
		if err := s.WriteFile(ctx, "f.go", data); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		data[0] = 'X'
		if got := s.Get("f.go"); string(got) != "original" {
			t.Errorf("stored data mutated: %q", got)
		}
		got := s.Get("f.go")
		got[0] = 'Y'
		if again := s.Get("f.go"); string(again) != "original" {
			t.Errorf("returned copy aliased storage: %q", again)
		}
	})

	t.Run("rejects invalid path", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "../escape.go", []byte("x")); err == nil {
			t.Error("WriteFile() with traversal path should fail")
		}
	})

	t.Run("reset clears files", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "f.go", []byte("x")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		s.Reset()
		if len(s.Files()) != 0 {
			t.Errorf("Files() after Reset = %v, want empty", s.Files())
		}
	})

	t.Run("concurrent writes", func(t *testing.T) {
		s := NewMemorySink()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				path := "unit" + string(rune('a'+n%26)) + ".go"
				_ = s.WriteFile(ctx, path, []byte("data"))
				_ = s.Get(path)
				_ = s.Files()
			}(i)
		}
		wg.Wait()
	})
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file under root", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		content := []byte("package demo\n")
		if err := s.WriteFile(ctx, "demo/demo_types.go", content); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := os.ReadFile(filepath.Join(root, "demo", "demo_types.go"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("content = %q, want %q", got, content)
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "f.go", []byte("one")); err != nil {
			t.Fatalf("first WriteFile() error = %v", err)
		}
		if err := s.WriteFile(ctx, "f.go", []byte("two")); err != nil {
			t.Fatalf("second WriteFile() error = %v", err)
		}
		got, _ := os.ReadFile(filepath.Join(root, "f.go"))
		if string(got) != "two" {
			t.Errorf("content = %q, want %q", got, "two")
		}
	})

	t.Run("no overwrite rejects existing file", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		s.Overwrite = false
		if err := s.WriteFile(ctx, "f.go", []byte("one")); err != nil {
			t.Fatalf("first WriteFile() error = %v", err)
		}
		err := s.WriteFile(ctx, "f.go", []byte("two"))
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("second WriteFile() error = %v, want already-exists", err)
		}
		got, _ := os.ReadFile(filepath.Join(root, "f.go"))
		if string(got) != "one" {
			t.Errorf("content = %q, want original preserved", got)
		}
	})

	t.Run("rejects traversal outside root", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "../escape.go", []byte("x")); err == nil {
			t.Error("WriteFile() escaping the root should fail")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "f.go", []byte("data")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("canceled context aborts write", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.WriteFile(canceled, "f.go", []byte("x")); err == nil {
			t.Error("WriteFile() with canceled context should fail")
		}
		if _, err := os.Stat(filepath.Join(root, "f.go")); !os.IsNotExist(err) {
			t.Error("file should not exist after canceled write")
		}
	})
}

func TestFormattingSink(t *testing.T) {
	ctx := context.Background()

	t.Run("formats go source", func(t *testing.T) {
		inner := NewMemorySink()
		s := NewFormattingSink(inner)
		src := []byte("package demo\nimport \"fmt\"\nfunc F( ){fmt.Println( 1 )}\n")
		if err := s.WriteFile(ctx, "f.go", src); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got := string(inner.Get("f.go"))
		if !strings.Contains(got, "func F() {") {
			t.Errorf("output not formatted:\n%s", got)
		}
	})

	t.Run("strips unused imports", func(t *testing.T) {
		inner := NewMemorySink()
		s := NewFormattingSink(inner)
		src := []byte("package demo\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n\nfunc F() { fmt.Println(1) }\n")
		if err := s.WriteFile(ctx, "f.go", src); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got := string(inner.Get("f.go"))
		if strings.Contains(got, `"os"`) {
			t.Errorf("unused import survived formatting:\n%s", got)
		}
	})

	t.Run("rejects invalid go source", func(t *testing.T) {
		inner := NewMemorySink()
		s := NewFormattingSink(inner)
		if err := s.WriteFile(ctx, "f.go", []byte("package demo\nfunc {")); err == nil {
			t.Error("WriteFile() with broken source should fail")
		}
		if inner.Get("f.go") != nil {
			t.Error("broken unit must not reach the inner sink")
		}
	})

	t.Run("passes non-go files through", func(t *testing.T) {
		inner := NewMemorySink()
		s := NewFormattingSink(inner)
		raw := []byte("not go at all {{{")
		if err := s.WriteFile(ctx, "notes.txt", raw); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if got := inner.Get("notes.txt"); string(got) != string(raw) {
			t.Errorf("non-go content altered: %q", got)
		}
	})
}
