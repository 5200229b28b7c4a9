package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/herovault/internal/app"
	"github.com/John-Robertt/herovault/internal/app/search"
	"github.com/John-Robertt/herovault/internal/config"
	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/infra/httpx"
	"github.com/John-Robertt/herovault/internal/source/heroapi"
	"github.com/John-Robertt/herovault/internal/source/omdb"
	"github.com/John-Robertt/herovault/internal/vault"
	"github.com/John-Robertt/herovault/internal/vault/filekv"
	"github.com/John-Robertt/herovault/internal/vault/pebblekv"
	"github.com/John-Robertt/herovault/internal/vault/sqlitekv"
	"github.com/John-Robertt/herovault/internal/web"
)

const (
	sqliteFile = "herovault.db"
	pebbleDir  = "herovault.pebble"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(os.Stdout)
		return
	}

	var code int
	switch args[0] {
	case "serve":
		code = serveCmd(args[1:])
	case "favourites":
		code = favouritesCmd(args[1:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage(os.Stderr)
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func serveCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printServeUsage(os.Stdout)
			return 0
		}
	}

	ca, err := parseArgs(args, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printServeUsage(os.Stderr)
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	eff, err := config.LoadEffective(cwd, ca, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误：%v\n", err)
		return 1
	}

	log, err := newLogger(eff.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败：%v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, eff, log); err != nil {
		log.Error("服务退出", zap.Error(err))
		return 1
	}
	return 0
}

// serve 组装依赖并阻塞到 ctx 结束。
func serve(ctx context.Context, eff config.EffectiveConfig, log *zap.Logger) error {
	kv, closeKV, err := openKV(eff.DataDir, eff.Store, false, log.Named("kv"))
	if err != nil {
		return err
	}
	defer closeKV()

	v, err := vault.Open(ctx, kv, log.Named("vault"))
	if err != nil {
		return err
	}

	client, err := httpx.NewClient(eff.ProxyURL, eff.Timeout)
	if err != nil {
		return fmt.Errorf("初始化 HTTP client 失败：%w", err)
	}
	s := &search.Searcher{
		Heroes:     &heroapi.Client{BaseURL: eff.HeroBaseURL, HTTP: client},
		MovieLimit: omdb.DefaultLimit,
		Log:        log.Named("search"),
	}
	if eff.Movies {
		s.Movies = &omdb.Client{BaseURL: eff.MovieBaseURL, APIKey: eff.MovieAPIKey, HTTP: client}
	}

	a, err := app.New(s, v, log.Named("app"))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              eff.Addr,
		Handler:           web.NewHandler(a, web.Options{}, log.Named("web")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("开始监听",
			zap.String("addr", eff.Addr),
			zap.String("store", eff.Store),
			zap.String("data", eff.DataDir),
			zap.Bool("movies", eff.Movies),
			zap.Int("favourites", v.Len()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("正在关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func favouritesCmd(args []string, stdout io.Writer) int {
	for _, a := range args {
		if isHelp(a) {
			printFavouritesUsage(stdout)
			return 0
		}
	}

	ca, err := parseArgs(args, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printFavouritesUsage(os.Stderr)
		return 2
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	st, err := config.LoadStorage(cwd, ca, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误：%v\n", err)
		return 1
	}
	if err := printFavourites(context.Background(), st, stdout); err != nil {
		fmt.Fprintf(os.Stderr, "读取收藏失败：%v\n", err)
		return 1
	}
	return 0
}

// printFavourites 以只读方式打开存储，把收藏列表作为 JSON 数组写到 w。
func printFavourites(ctx context.Context, st config.Storage, w io.Writer) error {
	kv, closeKV, err := openKV(st.DataDir, st.Store, true, zap.NewNop())
	if err != nil {
		return err
	}
	defer closeKV()

	v, err := vault.Open(ctx, kv, zap.NewNop())
	if err != nil {
		return err
	}
	list := v.List()
	if list == nil {
		list = domain.FavouritesList{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// openKV 按 store 选择持久化后端。
// readOnly=true 时不创建目录或数据库：目标不存在则视为空收藏。
func openKV(dataDir, store string, readOnly bool, log *zap.Logger) (vault.KV, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	nop := func() {}

	switch store {
	case config.StoreFile:
		return filekv.New(dataDir, readOnly), nop, nil
	case config.StoreSQLite:
		path := filepath.Join(dataDir, sqliteFile)
		if readOnly {
			db, err := sqlitekv.OpenReadOnly(path)
			if errors.Is(err, fs.ErrNotExist) {
				return emptyKV{}, nop, nil
			}
			if err != nil {
				return nil, nil, err
			}
			return db, func() { _ = db.Close() }, nil
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建数据目录失败：%w", err)
		}
		db, err := sqlitekv.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case config.StorePebble:
		dir := filepath.Join(dataDir, pebbleDir)
		if readOnly {
			db, err := pebblekv.OpenReadOnly(dir, log)
			if errors.Is(err, fs.ErrNotExist) {
				return emptyKV{}, nop, nil
			}
			if err != nil {
				return nil, nil, err
			}
			return db, func() { _ = db.Close() }, nil
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建数据目录失败：%w", err)
		}
		db, err := pebblekv.Open(dir, log)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("未知 store：%q", store)
	}
}

// emptyKV 是尚未创建的存储：读取总是未命中，拒绝写入。
type emptyKV struct{}

func (emptyKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (emptyKV) Set(context.Context, string, []byte) error {
	return errors.New("存储尚未创建，只读模式下不可写")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// parseArgs 解析 serve/favourites 共用的参数；withServe=false 时不接受 --addr/--debug。
func parseArgs(args []string, withServe bool) (config.CLIArgs, error) {
	ca := config.CLIArgs{}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case withServe && a == "--addr":
			v, err := value(&i, a)
			if err != nil {
				return config.CLIArgs{}, err
			}
			ca.Addr, ca.AddrSet = v, true
		case withServe && strings.HasPrefix(a, "--addr="):
			ca.Addr, ca.AddrSet = strings.TrimPrefix(a, "--addr="), true
		case withServe && a == "--debug":
			ca.Debug = true
		case a == "--store":
			v, err := value(&i, a)
			if err != nil {
				return config.CLIArgs{}, err
			}
			ca.Store, ca.StoreSet = v, true
		case strings.HasPrefix(a, "--store="):
			ca.Store, ca.StoreSet = strings.TrimPrefix(a, "--store="), true
		case a == "--data":
			v, err := value(&i, a)
			if err != nil {
				return config.CLIArgs{}, err
			}
			ca.DataDir = v
		case strings.HasPrefix(a, "--data="):
			ca.DataDir = strings.TrimPrefix(a, "--data=")
		case strings.HasPrefix(a, "-"):
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			return config.CLIArgs{}, fmt.Errorf("多余的参数 %q", a)
		}
	}

	if ca.AddrSet && strings.TrimSpace(ca.Addr) == "" {
		return config.CLIArgs{}, fmt.Errorf("--addr 不能为空")
	}
	if ca.StoreSet {
		if err := config.ValidateStore(strings.ToLower(ca.Store)); err != nil {
			return config.CLIArgs{}, fmt.Errorf("--store：%w", err)
		}
	}
	if ca.DataDir != "" && strings.TrimSpace(ca.DataDir) == "" {
		return config.CLIArgs{}, fmt.Errorf("--data 不能为空")
	}
	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  herovault serve [--addr ADDR] [--store file|sqlite|pebble] [--data DIR] [--debug]
  herovault favourites [--store file|sqlite|pebble] [--data DIR]

命令：
  serve       启动本地网页（搜索英雄、管理收藏）
  favourites  以 JSON 输出已保存的收藏

使用 "herovault serve --help" 查看详细说明。
`)
}

func printServeUsage(w io.Writer) {
	fmt.Fprintf(w, `用法：
  herovault serve [--addr ADDR] [--store file|sqlite|pebble] [--data DIR] [--debug]

参数：
  --addr      监听地址（默认 %s）
  --store     收藏存储：file|sqlite|pebble（默认 file）
  --data      数据目录，存放 %s 与收藏（默认 %s）
  --debug     使用开发模式日志
  -h, --help  显示帮助

环境变量：
  HEROVAULT_HERO_TOKEN     hero 接口 access token（必填，也可写在配置文件 hero_token）
  HEROVAULT_MOVIE_API_KEY  电影接口 apikey（movies=true 时必填）
  HEROVAULT_MOVIES         是否查询电影（true|false）
`, config.DefaultAddr, config.FileName, config.DefaultDataDir())
}

func printFavouritesUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  herovault favourites [--store file|sqlite|pebble] [--data DIR]

参数：
  --store     收藏存储：file|sqlite|pebble（未指定则读配置；默认 file）
  --data      数据目录
  -h, --help  显示帮助
`)
}
