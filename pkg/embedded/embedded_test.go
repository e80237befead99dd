package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/procedures/a.yaml": {Data: []byte("id: a")},
		"data/procedures/b.yaml": {Data: []byte("id: b")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	// 重置状态
	initialized = false

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())

	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestReadFileNotInitialized 测试未初始化时调用 ReadFile
func TestReadFileNotInitialized(t *testing.T) {
	initialized = false

	_, err := ReadFile("data/procedures/a.yaml")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/procedures/a.yaml") {
		t.Error("Exists should be false before Init()")
	}
}

func TestReadFile(t *testing.T) {
	Init(testFS())

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"普通路径", "data/procedures/a.yaml", "id: a", false},
		{"带 ./ 前缀", "./data/procedures/b.yaml", "id: b", false},
		{"未知前缀", "assets/x.png", "", true},
		{"文件不存在", "data/procedures/zzz.yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFile(%q) = %q, 期望 %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestGlobAndExists(t *testing.T) {
	Init(testFS())

	matches, err := Glob("data/procedures/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(matches))
	}

	if !Exists("data/procedures/a.yaml") {
		t.Error("Expected file to exist")
	}
	if !IsEmbeddedPath("./data/procedures/a.yaml") || IsEmbeddedPath("/tmp/a.yaml") {
		t.Error("IsEmbeddedPath mismatch")
	}
}
