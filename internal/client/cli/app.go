package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/drivesync/internal/client/chunks"
	"github.com/dmitrijs2005/drivesync/internal/client/client"
	"github.com/dmitrijs2005/drivesync/internal/client/config"
	"github.com/dmitrijs2005/drivesync/internal/client/events"
	"github.com/dmitrijs2005/drivesync/internal/client/fsys"
	"github.com/dmitrijs2005/drivesync/internal/client/gate"
	"github.com/dmitrijs2005/drivesync/internal/client/listing"
	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/netstat"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/items"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/metacache"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/offline"
	"github.com/dmitrijs2005/drivesync/internal/client/transfer"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/cryptox"
	"github.com/dmitrijs2005/drivesync/internal/filex"
	"github.com/dmitrijs2005/drivesync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// lister is the part of listing.Enumerator the REPL uses.
type lister interface {
	ResolveID(containerID string) string
	Items(ctx context.Context, containerID string) iter.Seq2[models.Item, error]
}

// engine is the part of transfer.Engine the REPL uses.
type engine interface {
	Queue(ctx context.Context, req transfer.Request) (string, error)
	Pause(id string) error
	Resume(id string) error
	Stop(id string) error
	Transfers() []models.TransferTask
}

// App is the interactive drive client.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	fs      fsys.FileSystem
	items   items.Repository
	offline offline.Repository
	cache   metacache.Repository
	bus     *events.Bus
	engine  engine
	net     netstat.Status
	monitor *netstat.Monitor
	source  listing.Source
	lister  lister
	reader  *bufio.Reader

	// cwd is the container id the REPL is in; trail holds the names of the
	// folders entered from the top level.
	cwd   string
	trail []string

	// wg tracks background transfers started from the REPL.
	wg sync.WaitGroup
}

// NewApp opens the local store and wires the engine, the listing source and
// the connectivity monitor. The listing enumerator is built by Login, once
// the master keys are known.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(logging.Options{Level: c.LogLevel, Format: c.LogFormat})

	if _, err := filex.EnsureDir(filepath.Dir(c.DatabasePath)); err != nil {
		return nil, fmt.Errorf("database dir: %w", err)
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	fs, err := fsys.NewOS(c.CacheDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := fs.ClearTemp(); err != nil {
		log.Warn(ctx, "could not clear temp dir", "err", err)
	}
	for _, dir := range []string{c.DownloadDir, c.OfflineDir} {
		if _, err := filex.EnsureDir(dir); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	fetcher, err := chunks.New(chunks.Config{
		Provider:  c.StorageProvider,
		Endpoint:  c.StorageEndpoint,
		AccessKey: c.StorageAccessKey,
		SecretKey: c.StorageSecretKey,
		UseSSL:    c.StorageUseSSL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	httpClient := &http.Client{}
	monitor := netstat.NewMonitor(c.GatewayURL, httpClient, log)
	bus := events.NewBus()
	offlineRepo := offline.NewSQLiteRepository(db)

	var media transfer.MediaLibrary
	if c.GalleryDir != "" {
		if _, err := filex.EnsureDir(c.GalleryDir); err != nil {
			_ = db.Close()
			return nil, err
		}
		media = transfer.DirLibrary{Dir: c.GalleryDir, FS: fs}
	}

	eng := transfer.New(transfer.Deps{
		Gates: gate.NewSet(gate.Limits{
			Downloads:    c.MaxDownloads,
			ChunkFetches: c.MaxChunkFetches,
			WriteBuffers: c.MaxWriteBuffers,
		}),
		Fetcher: fetcher,
		FS:      fs,
		Net:     monitor,
		Evictor: fsys.DirEvictor{Dirs: c.DerivedCacheDirs},
		Offline: offlineRepo,
		Media:   media,
		Bus:     bus,
		Log:     log,
	}, transfer.Options{
		WiFiOnly:     c.WiFiOnly,
		SafetyBuffer: c.SafetyBuffer(),
		SettleDelay:  c.SettleDelay,
		DownloadDir:  c.DownloadDir,
		OfflineDir:   c.OfflineDir,
	})

	return &App{
		config:  c,
		log:     log,
		db:      db,
		fs:      fs,
		items:   items.NewSQLiteRepository(db),
		offline: offlineRepo,
		cache:   metacache.NewSQLiteRepository(db),
		bus:     bus,
		engine:  eng,
		net:     monitor,
		monitor: monitor,
		source: &listing.HTTPSource{
			BaseURL: c.GatewayURL,
			APIKey:  c.APIKey,
			Client:  httpClient,
			TempDir: filepath.Join(fs.CacheDirectory(), "tmp"),
		},
		reader: bufio.NewReader(os.Stdin),
		cwd:    models.RootContainerID,
	}, nil
}

// Login unlocks metadata decryption. Configured master keys are used as is;
// otherwise one is derived from the password and the configured salt.
func (a *App) Login(ctx context.Context) error {
	keys := a.config.MasterKeys
	if len(keys) == 0 {
		password, err := getPassword(os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		mk := cryptox.DeriveMasterKey(password, []byte(a.config.Salt))
		keys = []string{hex.EncodeToString(mk)}
		common.WipeByteArray(mk)
	}

	proc := listing.NewProcessor(cryptox.NewProvider(keys...), a.cache, a.items, a.log)
	a.lister = listing.NewEnumerator(a.source, proc, a.db, a.config.RootFolderID, a.log)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.lister != nil
}

func (a *App) mode() Mode {
	if a.net != nil && !a.net.Online() {
		return ModeOffline
	}
	return ModeOnline
}

// Run logs in, starts the connectivity watcher and the notification printer,
// and blocks in the REPL until the user exits. Background transfers are
// stopped on exit.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	if err := a.Login(ctx); err != nil {
		return err
	}

	go a.monitor.Watch(ctx, a.config.OnlineCheckInterval)
	go a.watchEvents(ctx)

	printlnFn("drivesync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))

	for _, t := range a.engine.Transfers() {
		_ = a.engine.Stop(t.FileID)
	}
	a.wg.Wait()
	return nil
}

// Close releases the local store.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) getStatus() string {
	return fmt.Sprintf("(%s) /%s", a.mode(), strings.Join(a.trail, "/"))
}
