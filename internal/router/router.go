package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yamdb/internal/handlers"
	"yamdb/internal/middleware"
	"yamdb/internal/policy"
	"yamdb/internal/services"
	"yamdb/internal/store"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	DB          *gorm.DB
	Store       *store.Store
	Tokens      *services.TokenIssuer
	Auth        *services.AuthService
	Users       *services.UserService
	Catalog     *services.CatalogService
	Titles      *services.TitleService
	Reviews     *services.ReviewService
	Comments    *services.CommentService
	Log         *zap.Logger
	CORSOrigins []string
}

// NewDeps wires the services over gdb.
func NewDeps(gdb *gorm.DB, tokens *services.TokenIssuer, mail services.CodeSender, codes services.IntSource, log *zap.Logger) Deps {
	st := store.New(gdb)
	return Deps{
		DB:       gdb,
		Store:    st,
		Tokens:   tokens,
		Auth:     services.NewAuthService(st, mail, tokens, codes, log),
		Users:    services.NewUserService(st, log),
		Catalog:  services.NewCatalogService(st, log),
		Titles:   services.NewTitleService(st, time.Now, log),
		Reviews:  services.NewReviewService(st, log),
		Comments: services.NewCommentService(st, log),
		Log:      log,
	}
}

// New builds the engine with the global middleware chain and all routes.
func New(d Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		services.RegisterValidations(v)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(),
		middleware.CORS(d.CORSOrigins),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method not allowed."})
	})

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	userHandler := handlers.NewUserHandler(d.Users, d.Log)
	catalogHandler := handlers.NewCatalogHandler(d.Catalog, d.Log)
	titleHandler := handlers.NewTitleHandler(d.Titles, d.Log)
	reviewHandler := handlers.NewReviewHandler(d.Reviews, d.Log)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Log)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Log)

	// 运维路由 (Ops Routes)
	r.GET("/healthz", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 注册与令牌 (Signup & Token, unauthenticated)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup) // 注册或重新发送验证码
		auth.POST("/token", authHandler.Token)   // 验证码换取令牌
	}

	authed := api.Group("/")
	authed.Use(middleware.Authenticate(d.Tokens, d.Store, d.Log))

	// 个人资料 (Self profile)
	me := authed.Group("/users/me", middleware.Require(policy.Self))
	{
		me.GET("", userHandler.Me)
		me.PATCH("", userHandler.UpdateMe)
	}

	// 用户管理 (User admin)
	users := authed.Group("/users", middleware.Require(policy.UserAdmin))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:username", userHandler.Get)
		users.PATCH("/:username", userHandler.Update)
		users.DELETE("/:username", userHandler.Delete)
	}

	// 分类与类型 (Categories & Genres)
	catalog := authed.Group("/", middleware.Require(policy.Catalog))
	{
		catalog.GET("/categories", catalogHandler.ListCategories)
		catalog.POST("/categories", catalogHandler.CreateCategory)
		catalog.DELETE("/categories/:slug", catalogHandler.DeleteCategory)
		catalog.GET("/genres", catalogHandler.ListGenres)
		catalog.POST("/genres", catalogHandler.CreateGenre)
		catalog.DELETE("/genres/:slug", catalogHandler.DeleteGenre)

		catalog.GET("/titles", titleHandler.List)
		catalog.POST("/titles", titleHandler.Create)
		catalog.GET("/titles/:title_id", titleHandler.Get)
		catalog.PATCH("/titles/:title_id", titleHandler.Update)
		catalog.DELETE("/titles/:title_id", titleHandler.Delete)
	}

	// 评论与回复 (Reviews & Comments); object checks run in the services
	discussion := authed.Group("/titles/:title_id/reviews", middleware.Require(policy.Discussion))
	{
		discussion.GET("", reviewHandler.List)
		discussion.POST("", reviewHandler.Create)
		discussion.GET("/:review_id", reviewHandler.Get)
		discussion.PATCH("/:review_id", reviewHandler.Update)
		discussion.DELETE("/:review_id", reviewHandler.Delete)

		discussion.GET("/:review_id/comments", commentHandler.List)
		discussion.POST("/:review_id/comments", commentHandler.Create)
		discussion.GET("/:review_id/comments/:comment_id", commentHandler.Get)
		discussion.PATCH("/:review_id/comments/:comment_id", commentHandler.Update)
		discussion.DELETE("/:review_id/comments/:comment_id", commentHandler.Delete)
	}
}
