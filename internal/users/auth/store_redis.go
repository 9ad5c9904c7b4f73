// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/constants"
)

// RedisCodeRepository implements CodeRepository using Redis.
//
// Only the bcrypt hash of a confirmation code is ever stored; the plain code
// exists solely in the email sent to the member.
type RedisCodeRepository struct {
	client *redis.Client
}

// NewCodeRepository creates a new Redis-backed CodeRepository.
func NewCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{client: client}
}

/*
Set stores a hashed confirmation code for an email with a TTL.

Parameters:
  - context: context.Context
  - email: string
  - codeHash: string
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisCodeRepository) Set(context context.Context, email string, codeHash string, ttl time.Duration) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixConfirmCode, email)

	// Set the hash with TTL
	if err := repository.client.Set(context, key, codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("redis_confirm_code_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Get retrieves the stored code hash for an email.

Description: Returns apperr.NotFound if no code is pending or it has expired.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Stored bcrypt hash
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisCodeRepository) Get(context context.Context, email string) (string, error) {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixConfirmCode, email)

	// Get the hash from Redis
	codeHash, err := repository.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Confirmation code is invalid or expired")
		}
		return "", fmt.Errorf("redis_confirm_code_get_failed: %w", err)
	}

	// Return the hash
	return codeHash, nil
}

/*
Delete removes the pending code for an email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisCodeRepository) Delete(context context.Context, email string) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixConfirmCode, email)

	// Delete the key from Redis
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_confirm_code_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
