package router

import (
	"net/http"

	"schoolhub/internal/config"
	"schoolhub/internal/handlers"
	"schoolhub/internal/middleware"
	"schoolhub/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	postAuthorCacheSize = 4096
	sessionMaxAge       = 7 * 24 * 60 * 60
)

// Handlers groups every HTTP handler the routes dispatch to.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Board     *handlers.BoardHandler
	Comment   *handlers.CommentHandler
	Like      *handlers.LikeHandler
	Chat      *handlers.ChatHandler
	Home      *handlers.HomeHandler
	Timetable *handlers.TimetableHandler
	Page      *handlers.PageHandler
}

// New wires services, handlers and middleware into a ready engine.
func New(cfg *config.Config, conn *gorm.DB, log *zap.Logger) *gin.Engine {
	metrics := middleware.NewMetrics()

	authors := services.NewPostAuthors(postAuthorCacheSize)
	nicknames := services.NewNicknameAllocator(cfg.NicknameMaxRetries, metrics.Registry, log.Named("nickname"))
	likes := services.NewLikeService(conn)

	h := Handlers{
		Auth:      handlers.NewAuthHandler(services.NewAuthService(conn, cfg.TeacherSecurityKey), log),
		Board:     handlers.NewBoardHandler(services.NewBoardService(conn, authors), likes, log),
		Comment:   handlers.NewCommentHandler(services.NewCommentService(conn, nicknames, authors), log),
		Like:      handlers.NewLikeHandler(likes, log),
		Chat:      handlers.NewChatHandler(services.NewChatService(conn, services.NewChatHub(), log.Named("chat")), log.Named("chat")),
		Home:      handlers.NewHomeHandler(services.NewHomeService(conn, cfg.MealsCacheTTL), log),
		Timetable: handlers.NewTimetableHandler(services.NewTimetableService(conn), log),
		Page:      handlers.NewPageHandler(),
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log.Named("http")),
		metrics.Middleware(),
		middleware.Recovery(log),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/chat/ws", "/metrics"})),
	)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))
	r.Use(middleware.LoadUser())

	r.HTMLRender = LoadTemplates(cfg.TemplatesDir)
	r.Static("/static", cfg.StaticDir)
	r.GET("/metrics", metrics.Handler())

	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	auth := middleware.AuthRequired()

	// Page shells
	for path := range handlers.Pages {
		r.GET(path, h.Page.Show)
	}
	r.NoRoute(h.Page.NoRoute)

	// Accounts
	a := r.Group("/auth")
	{
		a.POST("/signup/student", h.Auth.SignupStudent)
		a.POST("/signup/teacher", h.Auth.SignupTeacher)
		a.POST("/login/student", h.Auth.LoginStudent)
		a.POST("/login/teacher", h.Auth.LoginTeacher)
		a.GET("/profile", h.Auth.Profile)
		a.POST("/logout", h.Auth.Logout)
		a.POST("/change-password", auth, h.Auth.ChangePassword)
	}

	// Anonymous board
	b := r.Group("/board")
	{
		b.GET("/posts", h.Board.List)
		b.GET("/post/:id", h.Board.Detail)
		b.POST("/post", auth, h.Board.Create)
		b.DELETE("/post/:id", auth, h.Board.Delete)
		b.GET("/my-posts", auth, h.Board.Mine)
		b.GET("/bookmarked-posts", auth, h.Board.Bookmarked)
		b.POST("/bookmark", auth, h.Board.Bookmark)
	}

	c := r.Group("/comments")
	{
		c.GET("/my-comments", auth, h.Comment.Mine)
		c.GET("/:postId", h.Comment.List)
		c.POST("", auth, h.Comment.Create)
		c.DELETE("/:id", auth, h.Comment.Delete)
	}

	l := r.Group("/likes", auth)
	{
		l.POST("", h.Like.Toggle)
		l.GET("/liked-posts", h.Like.LikedPosts)
	}

	ch := r.Group("/chat")
	{
		ch.GET("/rooms", h.Chat.Rooms)
		ch.POST("/rooms/create", auth, h.Chat.CreateRoom)
		ch.GET("/participants", h.Chat.Participants)
		ch.POST("/participants/join", auth, h.Chat.Join)
		ch.GET("/participants/rooms", auth, h.Chat.JoinedRooms)
		ch.GET("/messages", h.Chat.Messages)
		ch.POST("/messages/send", auth, h.Chat.Send)
		ch.GET("/ws", auth, h.Chat.Stream)
	}

	home := r.Group("/home")
	{
		home.GET("/meals", h.Home.Meals)
		home.POST("/meals", h.Home.SaveMeals)
		home.POST("/grade", h.Home.Grade)
		home.GET("/planner/:date", auth, h.Home.Planner)
		home.POST("/planner", auth, h.Home.AddPlanner)
		home.PUT("/planner/done/:id", auth, h.Home.SetDone)
		home.DELETE("/planner/:id", auth, h.Home.DeletePlanner)
	}

	t := r.Group("/time")
	{
		t.GET("/:user_id", h.Timetable.Get)
		t.POST("/save", auth, h.Timetable.Save)
	}
}
