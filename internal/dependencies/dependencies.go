package dependencies

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"ratehub/config/domain"
	"ratehub/external"
	"ratehub/internal/cache"
	"ratehub/internal/database"
	"ratehub/internal/fees"
	httpclient "ratehub/internal/http"
	"ratehub/internal/quote"
	"ratehub/internal/schema"
	env "ratehub/internal/secret"
)

// all dependencies required by this app
type Dependencies struct {
	HTTPClient *httpclient.HttpClient
	EnvManager *env.Manager
	Store      database.KeyValueStore
	Governor   *cache.Governor
	FeeTable   *fees.Table
	Calculator *fees.Calculator
	Gateway    *external.ProviderGateway
	Estimator  *external.Estimator
	Resolver   *quote.Resolver
}

// dependenciesInstance holds the singleton instance of Dependencies.
var (
	dependenciesInstance *Dependencies
	once                 sync.Once
	initErr              error
)

// NewDependencies initializes dependencies only once and returns the same instance on subsequent calls.
func NewDependencies() (*Dependencies, error) {
	once.Do(func() {
		// Initialize environment manager
		envManager, err := env.NewManager()
		if err != nil {
			initErr = err
			return
		}

		// Initialize the cache store: Redis in production, in-memory otherwise
		var store database.KeyValueStore
		if *envManager.CacheBackend == "redis" {
			redisSettings := database.RedisSettings{
				DB:         envManager.RedisDb,
				DBUser:     envManager.RedisUser,
				DBPassword: envManager.RedisPw,
				Host:       envManager.RedisHost,
				Port:       envManager.RedisPort,
			}
			redisStore, err := database.NewRedisStore(redisSettings)
			if err != nil {
				initErr = err
				return
			}
			store = redisStore
		} else {
			store = database.NewMemoryStore()
		}

		governor := cache.NewGovernor(store,
			cache.WithQuota(*envManager.QuotaLimit, *envManager.QuotaWarnThreshold))

		// Initialize the port fee reference table, with an optional Oracle override
		feeTable, err := fees.NewTable()
		if err != nil {
			initErr = err
			return
		}
		if envManager.OracleConfigured() {
			oracleSetting := database.OracleSettings{
				DBUser:      envManager.DbUser,
				DBPassword:  envManager.DbPw,
				Host:        envManager.Host,
				Port:        envManager.Port,
				ServiceName: envManager.ServiceName,
			}
			oracle, err := database.NewOracleDBConnectionPool(oracleSetting, 20, 3)
			if err != nil {
				log.Errorf("Oracle reference store unavailable, using embedded fee table: %v", err)
			} else {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				profiles, err := oracle.PortFeeProfiles(ctx)
				cancel()
				if err != nil {
					log.Errorf("Port fee override load failed, using embedded fee table: %v", err)
				} else {
					feeTable.Merge(profiles)
				}
				_ = oracle.Close()
			}
		}
		calculator := fees.NewCalculator(feeTable)

		// Initialize HTTP client
		httpClient := httpclient.CreateHttpClientInstance(
			httpclient.WithCtxTimeout(external.DefaultCallTimeout),
			httpclient.WithMaxIdleConns(100),
			httpclient.WithMaxConnsPerHost(100),
			httpclient.WithMaxIdleConnsPerHost(100),
			httpclient.WithIdleConnTimeout(90),
			httpclient.WithDisableKeepAlives(false),
		)

		// Initialize external services
		gateway := external.NewProviderGateway(httpClient, governor, envManager)
		estimator := external.NewEstimator(httpClient, envManager, markupConfig())

		resolver := quote.NewResolver(gateway, estimator, calculator)

		dependenciesInstance = &Dependencies{
			HTTPClient: httpClient,
			EnvManager: envManager,
			Store:      store,
			Governor:   governor,
			FeeTable:   feeTable,
			Calculator: calculator,
			Gateway:    gateway,
			Estimator:  estimator,
			Resolver:   resolver,
		}
	})
	return dependenciesInstance, initErr
}

// markupConfig merges config.yaml overrides on top of the standard category
// margins.
func markupConfig() external.MarkupConfig {
	markup := external.DefaultMarkupConfig()
	currentDir, err := os.Getwd()
	if err != nil {
		return markup
	}
	data, err := os.ReadFile(filepath.Join(currentDir, "config.yaml"))
	if err != nil {
		return markup
	}
	engineConfig := domain.Config{}
	if err := engineConfig.SetFromBytes(data); err != nil {
		log.Errorf("Ignoring malformed config.yaml: %v", err)
		return markup
	}
	for serviceType, value := range engineConfig.MarkupOverrides() {
		markup[schema.ServiceType(serviceType)] = value
	}
	return markup
}
