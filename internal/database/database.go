package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// --- Variables Globales ---
var (
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
)

// --- Initialisation ---
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Initialiser ScyllaDB (multi-keyspaces)
	if err := InitScyllaDB(); err != nil {
		log.Fatalf("❌ Échec initialisation ScyllaDB: %v", err)
	}

	// 2. Initialiser Redis
	connectRedis(ctx)

	// 3. Initialiser Elasticsearch (optionnel)
	connectElastic()

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// SCYLLA DB (Multi-Keyspaces avec Rôles)
// =============================================

// InitScyllaDB initialise le gestionnaire de sessions ScyllaDB
func InitScyllaDB() error {
	Scylla = &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  loadScyllaConfigs(),
	}

	for keyspace := range Scylla.configs {
		if _, err := Scylla.GetSession(keyspace); err != nil {
			return fmt.Errorf("échec initialisation keyspace %s: %v", keyspace, err)
		}
	}

	// Note: Les tables doivent être créées manuellement via scripts/scylladb_init.cql

	return nil
}

// loadScyllaConfigs charge les configurations depuis .env
func loadScyllaConfigs() map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	hosts := strings.Split(os.Getenv("SCYLLA_HOSTS"), ",")
	timeout := 5 * time.Second
	numConns := 20
	consistency := gocql.Quorum

	// --- Keyspace Commandes ---
	if ks := os.Getenv("SCYLLA_KS_ORDERS_KEYSPACE"); ks != "" {
		configs[ks] = ScyllaKeyspaceConfig{
			Hosts:       hosts,
			Keyspace:    ks,
			Username:    os.Getenv("SCYLLA_KS_ORDERS_ROLE"),
			Password:    os.Getenv("SCYLLA_KS_ORDERS_PASSWORD"),
			Timeout:     timeout,
			NumConns:    numConns,
			Consistency: consistency,
		}
	}

	// --- Keyspace Clients ---
	if ks := os.Getenv("SCYLLA_KS_CUSTOMERS_KEYSPACE"); ks != "" {
		configs[ks] = ScyllaKeyspaceConfig{
			Hosts:       hosts,
			Keyspace:    ks,
			Username:    os.Getenv("SCYLLA_KS_CUSTOMERS_ROLE"),
			Password:    os.Getenv("SCYLLA_KS_CUSTOMERS_PASSWORD"),
			Timeout:     timeout,
			NumConns:    numConns,
			Consistency: consistency,
		}
	}

	// --- Keyspace Utilisateurs ---
	if ks := os.Getenv("SCYLLA_KS_USERS_KEYSPACE"); ks != "" {
		configs[ks] = ScyllaKeyspaceConfig{
			Hosts:       hosts,
			Keyspace:    ks,
			Username:    os.Getenv("SCYLLA_KS_USERS_ROLE"),
			Password:    os.Getenv("SCYLLA_KS_USERS_PASSWORD"),
			Timeout:     timeout,
			NumConns:    numConns,
			Consistency: consistency,
		}
	}

	return configs
}

// createScyllaCluster crée une configuration de cluster pour un keyspace
func createScyllaCluster(config ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns

	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: config.Username,
		Password: config.Password,
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster
}

// GetSession retourne une session pour un keyspace donné
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists {
		if err := session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return session, nil
		}
		// Si la session est invalide, la recréer
		session.Close()
	}

	cluster := createScyllaCluster(config)

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %v", keyspace, err)
	}

	sm.sessions[keyspace] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s' (utilisateur: %s)",
		keyspace, config.Username)

	return session, nil
}

// CloseScylla ferme toutes les sessions ScyllaDB
func CloseScylla() {
	Scylla.mu.Lock()
	defer Scylla.mu.Unlock()

	for keyspace, session := range Scylla.sessions {
		session.Close()
		log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
	}
}

// =============================================
// HELPERS POUR ACCÈS FACILITÉ AUX SESSIONS
// =============================================

// GetOrdersSession retourne la session pour le keyspace orders
func GetOrdersSession() (*gocql.Session, error) {
	keyspace := os.Getenv("SCYLLA_KS_ORDERS_KEYSPACE")
	if keyspace == "" {
		return nil, fmt.Errorf("SCYLLA_KS_ORDERS_KEYSPACE non configuré")
	}
	return Scylla.GetSession(keyspace)
}

// GetCustomersSession retourne la session pour le keyspace customers
func GetCustomersSession() (*gocql.Session, error) {
	keyspace := os.Getenv("SCYLLA_KS_CUSTOMERS_KEYSPACE")
	if keyspace == "" {
		return nil, fmt.Errorf("SCYLLA_KS_CUSTOMERS_KEYSPACE non configuré")
	}
	return Scylla.GetSession(keyspace)
}

// GetUsersSession retourne la session pour le keyspace users
func GetUsersSession() (*gocql.Session, error) {
	keyspace := os.Getenv("SCYLLA_KS_USERS_KEYSPACE")
	if keyspace == "" {
		return nil, fmt.Errorf("SCYLLA_KS_USERS_KEYSPACE non configuré")
	}
	return Scylla.GetSession(keyspace)
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_HOST"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// =============================================
// ELASTICSEARCH (optionnel — recherche commandes admin)
// =============================================
func connectElastic() {
	url := os.Getenv("ELASTIC_URL")
	if url == "" {
		log.Println("⚠️ ELASTIC_URL absent — recherche de commandes désactivée")
		return
	}

	cfg := elasticsearch.Config{
		Addresses: []string{url},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Fatal("❌ Erreur création client Elasticsearch:", err)
	}

	res, err := client.Info()
	if err != nil {
		log.Fatal("❌ Erreur connexion Elasticsearch:", err)
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}
