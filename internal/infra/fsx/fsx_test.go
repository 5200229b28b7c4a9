package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "hero_vault.json", []byte("[]")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, ok, err := ReadFileIfExists(filepath.Join(dir, "hero_vault.json"))
	if err != nil || !ok {
		t.Fatalf("读取文件失败：ok=%v err=%v", ok, err)
	}
	if string(b) != "[]" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".hero_vault.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFail_KeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomic(dir, "a.json", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "a.json", []byte("new")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "old" {
		t.Fatalf("rename 失败后旧内容应保持不变，实际：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a.json"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(dir, "a.json", []byte("x"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestReadFileIfExists_Missing(t *testing.T) {
	b, ok, err := ReadFileIfExists(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || ok || b != nil {
		t.Fatalf("不存在的文件应返回 ok=false：b=%q ok=%v err=%v", b, ok, err)
	}
}
