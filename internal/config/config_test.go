package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEffective_MissingToken(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{DataDir: "data"}, map[string]string{})
	if Code(err) != ErrCodeMissingToken {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingToken, err, Code(err))
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{DataDir: "data"}, map[string]string{
		"HEROVAULT_HERO_TOKEN":    "tok",
		"HEROVAULT_MOVIE_API_KEY": "key",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.DataDir != filepath.Join(cwd, "data") {
		t.Fatalf("期望 data=%q，实际=%q", filepath.Join(cwd, "data"), eff.DataDir)
	}
	if eff.Addr != DefaultAddr || eff.Store != StoreFile {
		t.Fatalf("期望默认 addr/store，实际 addr=%q store=%q", eff.Addr, eff.Store)
	}
	if eff.HeroBaseURL != DefaultHeroBaseURL+"/tok" {
		t.Fatalf("期望 hero base 拼接 token，实际=%q", eff.HeroBaseURL)
	}
	if !eff.Movies || eff.MovieAPIKey != "key" {
		t.Fatalf("期望默认启用电影查询，实际 movies=%v key=%q", eff.Movies, eff.MovieAPIKey)
	}
	if eff.Timeout != DefaultTimeout {
		t.Fatalf("期望 timeout=%v，实际=%v", DefaultTimeout, eff.Timeout)
	}
}

func TestLoadEffective_MergeOrder(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "data", FileName), []byte(`{
		"addr": ":7000",
		"store": "sqlite",
		"hero_token": "file-tok",
		"movies": false,
		"timeout_seconds": 5,
		"proxy": {"url": "http://127.0.0.1:7890"}
	}`))

	// 配置文件生效。
	eff, err := LoadEffective(cwd, CLIArgs{DataDir: "data"}, map[string]string{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Addr != ":7000" || eff.Store != StoreSQLite || eff.Movies {
		t.Fatalf("期望配置文件生效，实际=%+v", eff)
	}
	if eff.Timeout != 5*time.Second || eff.ProxyURL != "http://127.0.0.1:7890" {
		t.Fatalf("期望 timeout=5s 且 proxy 生效，实际 timeout=%v proxy=%q", eff.Timeout, eff.ProxyURL)
	}

	// 环境变量覆盖配置文件。
	eff, err = LoadEffective(cwd, CLIArgs{DataDir: "data"}, map[string]string{
		"HEROVAULT_ADDR":            ":7001",
		"HEROVAULT_HERO_TOKEN":      "env-tok",
		"HEROVAULT_TIMEOUT_SECONDS": "0",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Addr != ":7001" || eff.HeroBaseURL != DefaultHeroBaseURL+"/env-tok" {
		t.Fatalf("期望环境变量覆盖，实际 addr=%q hero=%q", eff.Addr, eff.HeroBaseURL)
	}
	if eff.Timeout != 0 {
		t.Fatalf("期望 timeout=0（不设超时），实际=%v", eff.Timeout)
	}

	// CLI 覆盖环境变量。
	eff, err = LoadEffective(cwd, CLIArgs{
		DataDir:  "data",
		Addr:     ":7002",
		AddrSet:  true,
		Store:    "FILE",
		StoreSet: true,
	}, map[string]string{"HEROVAULT_ADDR": ":7001"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Addr != ":7002" || eff.Store != StoreFile {
		t.Fatalf("期望 CLI 覆盖，实际 addr=%q store=%q", eff.Addr, eff.Store)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := []struct {
		name string
		file string
		env  map[string]string
		cli  CLIArgs
	}{
		{name: "坏 JSON", file: `{`},
		{name: "未知 store", env: map[string]string{"HEROVAULT_STORE": "redis"}},
		{name: "CLI 空 addr", cli: CLIArgs{AddrSet: true}},
		{name: "hero_base_url 无 scheme", file: `{"hero_base_url":"superheroapi.com"}`},
		{name: "token 含斜杠", env: map[string]string{"HEROVAULT_HERO_TOKEN": "a/b"}},
		{name: "movies 无 key", env: map[string]string{"HEROVAULT_MOVIES": "true", "HEROVAULT_MOVIE_API_KEY": ""}},
		{name: "movies 非布尔", env: map[string]string{"HEROVAULT_MOVIES": "maybe"}},
		{name: "timeout 非整数", env: map[string]string{"HEROVAULT_TIMEOUT_SECONDS": "abc"}},
		{name: "timeout 负数", file: `{"timeout_seconds":-1}`},
		{name: "proxy 缺 host", file: `{"proxy":{"url":"socks5://"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cwd := t.TempDir()
			if tc.file != "" {
				writeFile(t, filepath.Join(cwd, "data", FileName), []byte(tc.file))
			}
			env := map[string]string{
				"HEROVAULT_HERO_TOKEN":    "tok",
				"HEROVAULT_MOVIE_API_KEY": "key",
			}
			for k, v := range tc.env {
				env[k] = v
			}
			cli := tc.cli
			cli.DataDir = "data"

			_, err := LoadEffective(cwd, cli, env)
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestLoadEffective_AbsoluteDataDir(t *testing.T) {
	cwd := t.TempDir()
	abs := filepath.Join(t.TempDir(), "vault")

	eff, err := LoadEffective(cwd, CLIArgs{DataDir: abs}, map[string]string{
		"HEROVAULT_HERO_TOKEN": "tok",
		"HEROVAULT_MOVIES":     "false",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.DataDir != abs {
		t.Fatalf("期望 data=%q，实际=%q", abs, eff.DataDir)
	}
	if eff.Movies {
		t.Fatalf("期望 movies=false")
	}
}

func TestLoadStorage_NoTokenNeeded(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "data", FileName), []byte(`{"store":"sqlite"}`))

	st, err := LoadStorage(cwd, CLIArgs{DataDir: "data"}, map[string]string{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if st.Store != StoreSQLite || st.DataDir != filepath.Join(cwd, "data") {
		t.Fatalf("期望 sqlite 与 data 目录，实际=%+v", st)
	}

	_, err = LoadStorage(cwd, CLIArgs{DataDir: "data", Store: "bolt", StoreSet: true}, map[string]string{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写文件失败：%v", err)
	}
}
