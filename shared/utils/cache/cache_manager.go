package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"orghub-backend/shared/config"
)

// CacheManager is a read cache for listing endpoints. It is never consulted
// on permission or mutation paths; those always go to the database.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

var (
	globalCacheManager *CacheManager

	MemberListTTL     = 5 * time.Minute
	InvitationListTTL = 2 * time.Minute
	OrgListTTL        = 5 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		if err := InitCacheManager(); err != nil {
			log.Printf("❌ Failed to initialize cache manager: %v", err)
			return nil
		}
	}
	return globalCacheManager
}

// MemberListKey is the cache key for an organization's member list
func MemberListKey(orgID uuid.UUID) string {
	return fmt.Sprintf("org:%s:members", orgID)
}

// InvitationListKey is the cache key for an organization's pending invitations
func InvitationListKey(orgID uuid.UUID) string {
	return fmt.Sprintf("org:%s:invitations", orgID)
}

// OrgListKey is the cache key for a user's organization list
func OrgListKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:orgs", userID)
}

// Get reads a cached listing into dest; the second return reports a hit
func (cm *CacheManager) Get(key string, dest interface{}) bool {
	if cm == nil || cm.client == nil {
		return false
	}

	result, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("❌ Cache error: %v", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(result), dest); err != nil {
		log.Printf("❌ Failed to unmarshal cache data for %s: %v", key, err)
		return false
	}
	return true
}

// Set caches a listing under the key with the given TTL
func (cm *CacheManager) Set(key string, value interface{}, ttl time.Duration) {
	if cm == nil || cm.client == nil {
		return
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		log.Printf("❌ Failed to marshal cache data for %s: %v", key, err)
		return
	}

	if err := cm.client.Set(cm.ctx, key, jsonData, ttl).Err(); err != nil {
		log.Printf("❌ Failed to set cache key %s: %v", key, err)
	}
}

// InvalidateOrganization drops the member and invitation listings of an
// organization. Called after every mutation that touches either.
func (cm *CacheManager) InvalidateOrganization(orgID uuid.UUID) {
	if cm == nil || cm.client == nil {
		return
	}
	if err := cm.client.Del(cm.ctx, MemberListKey(orgID), InvitationListKey(orgID)).Err(); err != nil {
		log.Printf("❌ Failed to invalidate organization cache %s: %v", orgID, err)
	}
}

// InvalidateUserOrgs drops a user's organization list
func (cm *CacheManager) InvalidateUserOrgs(userID uuid.UUID) {
	if cm == nil || cm.client == nil {
		return
	}
	if err := cm.client.Del(cm.ctx, OrgListKey(userID)).Err(); err != nil {
		log.Printf("❌ Failed to invalidate user org cache %s: %v", userID, err)
	}
}

// TestConnection tests the Redis connection
func (cm *CacheManager) TestConnection() error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	testKey := "test:connection"
	testValue := "connection_test_ok"

	if err := cm.client.Set(cm.ctx, testKey, testValue, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set test value: %v", err)
	}

	result, err := cm.client.Get(cm.ctx, testKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get test value: %v", err)
	}
	if result != testValue {
		return fmt.Errorf("test value mismatch: expected %s, got %s", testValue, result)
	}

	if err := cm.client.Del(cm.ctx, testKey).Err(); err != nil {
		return fmt.Errorf("failed to delete test value: %v", err)
	}

	log.Println("✅ Redis connection test passed")
	return nil
}

// Close closes the cache manager connection
func (cm *CacheManager) Close() error {
	if cm != nil && cm.client != nil {
		return cm.client.Close()
	}
	return nil
}
