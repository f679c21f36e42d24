package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

type CartRepoError error

var (
	// ErrCartVersionConflict 版本不符，另一個請求先寫入了，呼叫端需重讀重試
	ErrCartVersionConflict CartRepoError = errors.New("cart version conflict")
)

const cartTTL = 24 * time.Hour

// CartRepo 購物車的 session 儲存
// web 層對同一 session 的 read-modify-write 不是原子的，
// Save 以版本號做 compare-and-swap 把併發分頁的覆寫擋下來
type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

func generateCartItemKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

func generateCartMetaKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:meta", sessionID)
}

// Get 取購物車與目前版本，key 不存在時回傳空購物車與版本 0
func (r *CartRepo) Get(ctx context.Context, sessionID string) (*model.Cart, int64, error) {
	metaKey := generateCartMetaKey(sessionID)
	itemsKey := generateCartItemKey(sessionID)

	versionStr, err := r.CartCache.HGet(ctx, metaKey, "version").Result()
	if err == redis.Nil {
		return model.NewCart(sessionID), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get cart meta: %w", err)
	}
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid cart version %q: %w", versionStr, err)
	}

	fields, err := r.CartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := model.NewCart(sessionID)
	for productID, raw := range fields {
		var item model.CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, 0, fmt.Errorf("invalid cart item for product %s: %w", productID, err)
		}
		if item.Quantity > 0 {
			cart.Items = append(cart.Items, item)
		}
	}

	return cart, version, nil
}

// Save 以 Lua 腳本做版本 CAS 寫入整台購物車
// expectedVersion 與現存版本不符時不寫入並回傳 ErrCartVersionConflict
func (r *CartRepo) Save(ctx context.Context, cart *model.Cart, expectedVersion int64) error {
	metaKey := generateCartMetaKey(cart.SessionID)
	itemsKey := generateCartItemKey(cart.SessionID)

	luaScript := `
		local meta_key = KEYS[1]
		local items_key = KEYS[2]
		local expected = tonumber(ARGV[1])
		local ttl = tonumber(ARGV[2])

		local current = tonumber(redis.call('HGET', meta_key, 'version') or "0")
		if current ~= expected then
			return -1
		end

		redis.call('DEL', items_key)
		for i = 4, #ARGV, 2 do
			redis.call('HSET', items_key, ARGV[i], ARGV[i+1])
		end
		redis.call('HSET', meta_key, 'session_id', ARGV[3], 'version', expected + 1)
		redis.call('EXPIRE', meta_key, ttl)
		redis.call('EXPIRE', items_key, ttl)
		return expected + 1
	`

	args := []interface{}{
		expectedVersion,
		int(cartTTL.Seconds()),
		cart.SessionID,
	}
	for _, item := range cart.Items {
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal cart item: %w", err)
		}
		args = append(args, strconv.FormatUint(uint64(item.ProductID), 10), string(raw))
	}

	result, err := r.CartCache.Eval(ctx, luaScript, []string{metaKey, itemsKey}, args...).Result()
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	switch v := result.(type) {
	case int64:
		if v == -1 {
			return fmt.Errorf("%w: session %s", ErrCartVersionConflict, cart.SessionID)
		}
		return nil
	default:
		return fmt.Errorf("unexpected result type: %T", result)
	}
}

// Clear 清空購物車，版本一併重置
func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	metaKey := generateCartMetaKey(sessionID)
	itemsKey := generateCartItemKey(sessionID)

	err := r.CartCache.Del(ctx, itemsKey, metaKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
