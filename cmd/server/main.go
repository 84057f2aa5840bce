package main

import (
	"log"
	"time"

	"github.com/reroute/reroute-backend-go/internal/api"
	"github.com/reroute/reroute-backend-go/internal/config"
	"github.com/reroute/reroute-backend-go/internal/database"
	"github.com/reroute/reroute-backend-go/internal/handler"
	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/planner"
	"github.com/reroute/reroute-backend-go/internal/repository"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/service"
	"github.com/reroute/reroute-backend-go/pkg/valhalla"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据源：优先 sqlite，未配置时读取 GeoJSON 文件
	var source repository.DatasetSource
	if cfg.DBPath != "" {
		if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer database.Close()

		if err := database.NewMigrationManager(database.GetDB()).Migrate(); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}

		source = repository.NewFeatureRepository(database.GetDB())
	} else {
		source = repository.NewGeoJSONRepository(cfg.StreetDataPath, cfg.POIDataPath)
	}

	// 构建街道空间索引
	streets, err := index.Load(source)
	if err != nil {
		log.Fatal("Failed to build spatial index:", err)
	}

	// 构建 POI 索引（允许为空，亮点提取会自动跳过）
	pois, err := source.POIFeatures()
	if err != nil {
		log.Printf("[Server] POI dataset unavailable, highlights disabled: %v", err)
	}
	poiIndex := index.BuildPOIIndex(pois, planner.HighlightRadiusMeters)

	// 初始化路线规划管线
	provider := valhalla.NewClient(cfg.ProviderURL, time.Duration(cfg.ProviderTimeoutSeconds)*time.Second)
	// gin 每个请求一个 goroutine，随机源必须加锁共享
	rng := planner.NewLockedRand(time.Now().UnixNano())
	scorer := scoring.NewScorer(streets)
	selector := planner.NewWaypointSelector(streets, rng)
	loops := planner.NewLoopSynthesizer(provider, scorer, selector, rng)
	highlights := planner.NewHighlightExtractor(streets, poiIndex)

	routeService := service.NewRouteService(
		provider, scorer, selector, loops, highlights,
		time.Duration(cfg.RequestBudgetSeconds)*time.Second, nil,
	)
	routeHandler := handler.NewRouteHandler(routeService)

	// 初始化路由
	router := api.SetupRouter(cfg, routeHandler)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
