package web

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"x-lotto/config"
	"x-lotto/logger"
	"x-lotto/lottery"
	"x-lotto/util/common"
	"x-lotto/web/controller"
	"x-lotto/web/global"
	"x-lotto/web/job"
	"x-lotto/web/locale"
	"x-lotto/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	api *controller.APIController

	settingService *service.SettingService
	drawService    *service.DrawService
	serverService  *service.ServerService
	shareService   *service.ShareService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(settings *config.Settings, kv lottery.KeyValueStore, drawService *service.DrawService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		settingService: service.NewSettingService(settings, kv),
		drawService:    drawService,
		serverService:  service.NewServerService(drawService),
		shareService:   service.NewShareService(drawService),
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	basePath := s.settingService.GetBasePath()
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{basePath + "panel/api/"})))

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     basePath,
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(config.GetName(), store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	// init i18n
	err = locale.InitLocalizer(i18nFS, s.settingService.GetDefaultLocale())
	if err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())

	g := engine.Group(basePath)
	g.GET("", s.index)
	s.api = controller.NewAPIController(g, s.drawService, s.serverService, s.shareService)

	return engine, nil
}

// index 返回程序名、版本和可用语言，面板据此初始化。
func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      config.GetName(),
		"version":   config.GetVersion(),
		"languages": locale.SupportedLanguages(),
		"lang":      locale.Lang(c),
		"startTime": startTime.Unix(),
	})
}

func (s *Server) startTask() {
	jobs := s.settingService.Settings().Jobs
	if jobs.Checkpoint != "" {
		if _, err := s.cron.AddJob(jobs.Checkpoint, job.NewCheckpointJob()); err != nil {
			logger.Warning("add checkpoint job failed:", err)
		}
	}
	if jobs.SnapshotLog != "" {
		if _, err := s.cron.AddJob(jobs.SnapshotLog, job.NewStateSnapshotJob(s.drawService)); err != nil {
			logger.Warning("add snapshot job failed:", err)
		}
	}
}

func (s *Server) Start() (err error) {
	// This is an anonymous function, no function name
	defer func() {
		if err != nil {
			s.Stop()
		}
	}()

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	s.cron.Start()
	global.SetWebServer(s)

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	certFile := s.settingService.GetCertFile()
	keyFile := s.settingService.GetKeyFile()
	listen := s.settingService.GetListen()
	port := s.settingService.GetPort()

	var tlsConfig *tls.Config
	if certFile != "" && keyFile != "" {
		// 配置了证书，启用 HTTPS；证书无效时直接报错，不回退到 HTTP
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			logger.Errorf("Error loading certificates, please check the file path and content: %v", err)
			return err
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
	} else {
		// 未配置证书，强制监听在本地回环地址
		logger.Info("No certificate configured. Forcing listen address to localhost.")
		listen = fallbackToLocalhost(listen)
	}
	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer common.Recover("web server")
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()

	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1 error
	var err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCtx() context.Context {
	return s.ctx
}

func (s *Server) GetCron() *cron.Cron {
	return s.cron
}

func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// fallbackToLocalhost 根据传入地址返回对应的本地回环地址
func fallbackToLocalhost(listen string) string {
	ip := net.ParseIP(listen)
	if ip == nil {
		// 无法解析则默认回退 IPv4 回环
		return "127.0.0.1"
	}
	if ip.To4() != nil {
		return "127.0.0.1"
	}
	// IPv6 回退 IPv6 回环
	return "::1"
}
