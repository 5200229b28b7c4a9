package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// ErrCodeInvalid 表示配置文件/环境变量无法解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingToken 表示没有配置 hero 接口的 access token。
	ErrCodeMissingToken = "config_missing_token"
)

const (
	FileName = "herovault.json"

	DefaultAddr         = "127.0.0.1:8080"
	DefaultStore        = StoreFile
	DefaultHeroBaseURL  = "https://superheroapi.com/api.php"
	DefaultMovieBaseURL = "https://www.omdbapi.com/"
	DefaultTimeout      = 20 * time.Second

	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StorePebble = "pebble"
)

// CLIArgs 是 CLI 暴露的入口；*Set 字段保留“是否显式指定”，保证 CLI 可以覆盖为零值。
type CLIArgs struct {
	DataDir string

	Addr    string
	AddrSet bool

	Store    string
	StoreSet bool

	Debug bool
}

// FileConfig 对应 <data>/herovault.json。
type FileConfig struct {
	Addr           string       `json:"addr"`
	Store          string       `json:"store"`
	HeroBaseURL    string       `json:"hero_base_url"`
	HeroToken      string       `json:"hero_token"`
	MovieBaseURL   string       `json:"movie_base_url"`
	MovieAPIKey    string       `json:"movie_api_key"`
	Movies         *bool        `json:"movies"`
	TimeoutSeconds *int         `json:"timeout_seconds"`
	Proxy          *ProxyConfig `json:"proxy"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EnvConfig 是 HEROVAULT_* 环境变量。布尔/整数保留为字符串，以区分“未设置”与零值。
type EnvConfig struct {
	Addr           string `env:"HEROVAULT_ADDR"`
	Store          string `env:"HEROVAULT_STORE"`
	HeroBaseURL    string `env:"HEROVAULT_HERO_BASE_URL"`
	HeroToken      string `env:"HEROVAULT_HERO_TOKEN"`
	MovieBaseURL   string `env:"HEROVAULT_MOVIE_BASE_URL"`
	MovieAPIKey    string `env:"HEROVAULT_MOVIE_API_KEY"`
	Movies         string `env:"HEROVAULT_MOVIES"`
	TimeoutSeconds string `env:"HEROVAULT_TIMEOUT_SECONDS"`
	ProxyURL       string `env:"HEROVAULT_PROXY_URL"`
}

// EffectiveConfig 是合并并规范化后的最终配置。
type EffectiveConfig struct {
	DataDir string
	Addr    string
	Store   string
	Debug   bool

	// HeroBaseURL 已拼好 token 路径段：<base>/<token>。
	HeroBaseURL string

	Movies       bool
	MovieBaseURL string
	MovieAPIKey  string

	Timeout  time.Duration
	ProxyURL string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingToken:
		return fmt.Sprintf("%s：未配置 hero_token（配置文件 %q 或环境变量 HEROVAULT_HERO_TOKEN）", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：%q", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// DefaultDataDir 返回 <UserConfigDir>/herovault；取不到时退化为 ./.herovault。
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".herovault"
	}
	return filepath.Join(dir, "herovault")
}

// Storage 是只与收藏存储相关的配置子集；favourites 子命令不需要 hero token。
type Storage struct {
	DataDir string
	Store   string
}

// LoadEffective 读取 <data>/herovault.json（可选）与环境变量，并与 CLI 合并为最终配置。
//
// 覆盖优先级（固定）：CLI > 环境变量 > 配置文件 > 内置默认。
// environ 为 nil 时读取进程环境变量。
func LoadEffective(cwd string, cli CLIArgs, environ map[string]string) (EffectiveConfig, error) {
	l, err := load(cwd, cli, environ)
	if err != nil {
		return EffectiveConfig{}, err
	}
	return merge(l.dataDir, cli, l.fc, l.ec, l.cfgPath)
}

// LoadStorage 与 LoadEffective 使用相同的来源与优先级，但只解析并校验存储相关字段。
func LoadStorage(cwd string, cli CLIArgs, environ map[string]string) (Storage, error) {
	l, err := load(cwd, cli, environ)
	if err != nil {
		return Storage{}, err
	}
	store, err := mergeStore(cli, l.fc, l.ec)
	if err != nil {
		return Storage{}, &Error{Code: ErrCodeInvalid, Path: l.cfgPath, Err: err}
	}
	return Storage{DataDir: l.dataDir, Store: store}, nil
}

type loaded struct {
	dataDir string
	cfgPath string
	fc      FileConfig
	ec      EnvConfig
}

func load(cwd string, cli CLIArgs, environ map[string]string) (loaded, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return loaded{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	dataDir := strings.TrimSpace(cli.DataDir)
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	dataDir = absCleanFrom(cwdAbs, dataDir)
	cfgPath := filepath.Join(dataDir, FileName)

	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return loaded{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	var ec EnvConfig
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&ec, opts); err != nil {
		return loaded{}, &Error{Code: ErrCodeInvalid, Path: "env", Err: err}
	}
	return loaded{dataDir: dataDir, cfgPath: cfgPath, fc: fc, ec: ec}, nil
}

func mergeStore(cli CLIArgs, fc FileConfig, ec EnvConfig) (string, error) {
	store := strings.ToLower(pick(DefaultStore, fc.Store, ec.Store))
	if cli.StoreSet {
		store = strings.ToLower(strings.TrimSpace(cli.Store))
	}
	return store, ValidateStore(store)
}

func merge(dataDir string, cli CLIArgs, fc FileConfig, ec EnvConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	addr := pick(DefaultAddr, fc.Addr, ec.Addr)
	if cli.AddrSet {
		addr = strings.TrimSpace(cli.Addr)
	}
	if addr == "" {
		return EffectiveConfig{}, invalid("addr 不能为空")
	}

	store, err := mergeStore(cli, fc, ec)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	heroBase := pick(DefaultHeroBaseURL, fc.HeroBaseURL, ec.HeroBaseURL)
	if err := validateHTTPURL("hero_base_url", heroBase); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	token := pick("", fc.HeroToken, ec.HeroToken)
	if token == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingToken, Path: cfgPath}
	}
	if strings.Contains(token, "/") {
		return EffectiveConfig{}, invalid("hero_token 不能包含 '/'")
	}

	movies := true
	if fc.Movies != nil {
		movies = *fc.Movies
	}
	if v := strings.TrimSpace(ec.Movies); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: "env", Err: fmt.Errorf("HEROVAULT_MOVIES 无效：%q", v)}
		}
		movies = b
	}
	movieBase := pick(DefaultMovieBaseURL, fc.MovieBaseURL, ec.MovieBaseURL)
	movieKey := pick("", fc.MovieAPIKey, ec.MovieAPIKey)
	if movies {
		if err := validateHTTPURL("movie_base_url", movieBase); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if movieKey == "" {
			return EffectiveConfig{}, invalid("movies=true 但 movie_api_key 为空")
		}
	}

	timeout := DefaultTimeout
	if fc.TimeoutSeconds != nil {
		timeout = time.Duration(*fc.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(ec.TimeoutSeconds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: "env", Err: fmt.Errorf("HEROVAULT_TIMEOUT_SECONDS 无效：%q", v)}
		}
		timeout = time.Duration(n) * time.Second
	}
	// 0 表示不设超时；负数没有意义。
	if timeout < 0 {
		return EffectiveConfig{}, invalid("timeout_seconds 不能为负数")
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if v := strings.TrimSpace(ec.ProxyURL); v != "" {
		proxyURL = v
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, invalid("proxy.url 无效：%q", proxyURL)
		}
	}

	return EffectiveConfig{
		DataDir:      dataDir,
		Addr:         addr,
		Store:        store,
		Debug:        cli.Debug,
		HeroBaseURL:  strings.TrimRight(heroBase, "/") + "/" + token,
		Movies:       movies,
		MovieBaseURL: movieBase,
		MovieAPIKey:  movieKey,
		Timeout:      timeout,
		ProxyURL:     proxyURL,
	}, nil
}

// ValidateStore 校验存储后端名称。
func ValidateStore(s string) error {
	switch s {
	case StoreFile, StoreSQLite, StorePebble:
		return nil
	case "":
		return fmt.Errorf("store 不能为空")
	default:
		return fmt.Errorf("store 只能是 file、sqlite 或 pebble，实际是 %q", s)
	}
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

// pick 返回最后一个非空值（按优先级从低到高传入）。
func pick(vals ...string) string {
	out := ""
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = v
		}
	}
	return out
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
