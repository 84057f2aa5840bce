package config

import (
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Port           string
	DBPath         string // 街道评分数据库路径（为空时使用 GeoJSON 文件）
	StreetDataPath string // 街道评分 GeoJSON 路径
	POIDataPath    string // POI GeoJSON 路径
	ProviderURL    string // 路线规划服务地址
	JWTSecret      string
	AuthRequired   bool

	RequestBudgetSeconds   int // 单个请求的总时间预算
	ProviderTimeoutSeconds int // 单次路线规划调用超时
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	streetDataPath := os.Getenv("STREET_DATA_PATH")
	if streetDataPath == "" {
		streetDataPath = "./data/barcelona_street_scores.geojson"
	}

	poiDataPath := os.Getenv("POI_DATA_PATH")
	if poiDataPath == "" {
		poiDataPath = "./data/POI.geojson"
	}

	providerURL := os.Getenv("PROVIDER_URL")
	if providerURL == "" {
		providerURL = "http://localhost:8002"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:                   port,
		DBPath:                 os.Getenv("DB_PATH"),
		StreetDataPath:         streetDataPath,
		POIDataPath:            poiDataPath,
		ProviderURL:            providerURL,
		JWTSecret:              jwtSecret,
		AuthRequired:           os.Getenv("AUTH_REQUIRED") == "1",
		RequestBudgetSeconds:   envInt("REQUEST_BUDGET_SECONDS", 30),
		ProviderTimeoutSeconds: envInt("PROVIDER_TIMEOUT_SECONDS", 8),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
