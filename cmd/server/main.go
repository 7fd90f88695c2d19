package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Luismorlan/socialmux/app_setting"
	"github.com/Luismorlan/socialmux/credential"
	"github.com/Luismorlan/socialmux/engine"
	"github.com/Luismorlan/socialmux/file_store"
	"github.com/Luismorlan/socialmux/friendgraph"
	"github.com/Luismorlan/socialmux/mailer"
	"github.com/Luismorlan/socialmux/poststore"
	"github.com/Luismorlan/socialmux/reconciler"
	"github.com/Luismorlan/socialmux/server"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/token"
	. "github.com/Luismorlan/socialmux/utils"
	"github.com/Luismorlan/socialmux/utils/dotenv"
	. "github.com/Luismorlan/socialmux/utils/flag"
	. "github.com/Luismorlan/socialmux/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const (
	defaultPort     = "5000"
	shutdownTimeout = 10 * time.Second
)

func cleanup() {
	if dotenv.IsProdEnv() {
		CloseProfiler()
		CloseTracer()
	}
	Log.Info("api server shutdown")
}

func buildStorage(ctx context.Context) (store.Store, GrantLedger, error) {
	if *UseMemoryStore {
		Log.Warn("running with in-memory storage, data is lost on exit")
		return store.NewMemoryStore(), NewMemoryGrantLedger(), nil
	}

	db, err := GetDBConnection()
	if err != nil {
		return nil, nil, err
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		return nil, nil, err
	}
	ledger, err := GetRedisGrantLedger(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store.NewGormStore(db), ledger, nil
}

func buildMailer() (mailer.Mailer, error) {
	if !dotenv.IsProdEnv() {
		return mailer.NewStdErrMailer(), nil
	}
	return mailer.NewSesMailer(os.Getenv("AWS_REGION"), os.Getenv("MAIL_FROM"))
}

func buildPictureStore(maxBytes int64) (file_store.PictureStore, error) {
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		return file_store.NewS3FileStore(os.Getenv("AWS_REGION"), bucket, os.Getenv("S3_URL_PREFIX"), maxBytes)
	}
	return file_store.NewLocalFileStore(os.Getenv("ASSET_DIR"), maxBytes)
}

func main() {
	ParseFlags()
	InitLogger()
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	if dotenv.IsProdEnv() {
		StartTracer()
		if err := StartProfiler(); err != nil {
			Log.Errorln("fail to start profiler", err)
		}
	}

	setting, err := app_setting.ParseAppSetting(*AppSettingPath)
	if err != nil {
		Log.Fatalln("fail to parse app setting", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, ledger, err := buildStorage(ctx)
	if err != nil {
		Log.Fatalln("fail to set up storage", err)
	}
	defer db.Close()
	if closer, ok := ledger.(io.Closer); ok {
		defer closer.Close()
	}

	tokens, err := token.NewService(os.Getenv("JWT_SECRET"), os.Getenv("RESET_SECRET"), setting.SessionTokenTTL(), setting.ResetTokenTTL())
	if err != nil {
		Log.Fatalln("fail to set up token service", err)
	}
	mail, err := buildMailer()
	if err != nil {
		Log.Fatalln("fail to set up mailer", err)
	}
	pictures, err := buildPictureStore(setting.MAX_UPLOAD_BYTES)
	if err != nil {
		Log.Fatalln("fail to set up picture store", err)
	}
	defer pictures.CleanUp()
	stats, err := NewStatsReporter(os.Getenv("DD_AGENT_ADDR"))
	if err != nil {
		Log.Errorln("fail to connect to statsd, metrics disabled", err)
		stats = NoopStats
	}

	eventBus := engine.NewEventBus()
	e := engine.NewEngine(ctx, []engine.Module{
		reconciler.NewFriendEdgeReconciler(reconciler.FriendEdgeReconcilerConfig{
			ScanInterval: setting.ReconcileInterval(),
		}, db, eventBus, stats),
	}, eventBus)
	go e.Run()
	defer e.Shutdown()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	if dotenv.IsProdEnv() {
		router.Use(gintrace.Middleware(*ServiceName))
	}

	deps := server.Dependencies{
		Users:       db,
		Tokens:      tokens,
		Credentials: credential.NewService(db, tokens, ledger, mail, pictures, stats, setting),
		Friends:     friendgraph.NewService(db, eventBus, stats, setting.FRIEND_WRITE_ATTEMPTS),
		Posts:       poststore.NewService(db, db, pictures, stats, setting.MAX_COMMENT_LENGTH),
		Setting:     setting,
	}
	if local, ok := pictures.(*file_store.LocalFileStore); ok {
		deps.AssetDir = local.FolderName()
	}
	server.RegisterRoutes(router, deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}
	go func() {
		Log.Info("api server starts up on port ", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log.Errorln("api server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Log.Errorln("fail to shut down http server gracefully", err)
	}
}
