package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "peerfund-core/internal/adapter/http"
	"peerfund-core/internal/adapter/middleware"
	"peerfund-core/internal/adapter/repository/mysql"
	"peerfund-core/internal/config"
	acctdomain "peerfund-core/internal/domain/account"
	agrdomain "peerfund-core/internal/domain/agreement"
	docdomain "peerfund-core/internal/domain/document"
	evtdomain "peerfund-core/internal/domain/event"
	mktdomain "peerfund-core/internal/domain/marketplace"
	"peerfund-core/internal/infrastructure/cache"
	"peerfund-core/internal/infrastructure/db"
	accountuc "peerfund-core/internal/usecase/account"
	agreementuc "peerfund-core/internal/usecase/agreement"
	documentuc "peerfund-core/internal/usecase/document"
	eventuc "peerfund-core/internal/usecase/event"
	marketplaceuc "peerfund-core/internal/usecase/marketplace"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&mktdomain.Offer{}, &mktdomain.Request{},
		&agrdomain.Loan{}, &agrdomain.Installment{},
		&docdomain.Document{}, &docdomain.Verifier{},
		&acctdomain.Account{}, &evtdomain.Event{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	guow := mysql.NewGormUoW(gdb)

	agreementUC := agreementuc.NewUsecase(guow, agreementuc.Config{
		PlatformFeeBps:    cfg.PlatformFeeBps,
		PlatformAccountID: cfg.PlatformAccountID,
		GracePeriod:       time.Duration(cfg.GracePeriodDays) * 24 * time.Hour,
		MatcherID:         cfg.MatcherID,
		OperatorID:        cfg.OperatorID,
	})
	marketplaceUC := marketplaceuc.NewUsecase(guow, agreementUC, cfg.MatcherID)
	documentUC := documentuc.NewUsecase(guow, cfg.RegistryOwnerID)
	accountUC := accountuc.NewUsecase(guow)
	eventUC := eventuc.NewUsecase(guow)

	h := httpadp.NewHandler()
	mh := httpadp.NewMarketplaceHandler(marketplaceUC)
	ah := httpadp.NewAgreementHandler(agreementUC)
	dh := httpadp.NewDocumentHandler(documentUC)
	ch := httpadp.NewAccountHandler(accountUC)
	eh := httpadp.NewEventHandler(eventUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	e.GET("/health", h.Health)

	e.POST("/offers", mh.CreateOffer)
	e.PUT("/offers/:offer_key", mh.UpdateOffer)
	e.POST("/offers/:offer_key/cancel", mh.CancelOffer)
	e.GET("/offers/:offer_key", mh.GetOffer)

	e.POST("/requests", mh.CreateRequest)
	e.PUT("/requests/:request_key", mh.UpdateRequest)
	e.POST("/requests/:request_key/cancel", mh.CancelRequest)
	e.GET("/requests/:request_key", mh.GetRequest)

	e.POST("/matches", mh.Match)

	e.POST("/loans", ah.CreateLoan)
	e.GET("/loans/:loan_key", ah.GetLoan)
	e.POST("/loans/:loan_key/fund", ah.FundLoan)
	e.POST("/loans/:loan_key/payments", ah.MakePayment)
	e.POST("/loans/:loan_key/default", ah.MarkDefaulted)
	e.POST("/loans/:loan_key/cancel", ah.CancelLoan)

	e.POST("/documents", dh.AddDocument)
	e.POST("/documents/:document_key/verify", dh.VerifyDocument)
	e.GET("/documents/:document_key", dh.GetDocument)
	e.GET("/documents/:document_key/verified", dh.IsVerified)
	e.GET("/owners/:owner_id/documents", dh.ListOwnerDocuments)
	e.POST("/verifiers", dh.AddVerifier)
	e.DELETE("/verifiers/:identity", dh.RemoveVerifier)
	e.GET("/verifiers", dh.ListVerifiers)

	e.POST("/accounts/:identity/deposits", ch.Deposit)
	e.GET("/accounts/:identity", ch.GetAccount)

	e.GET("/events", eh.ListEvents)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
