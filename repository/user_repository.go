package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"StoryFM/model"
)

// ErrDuplicateUser 用户名或邮箱已存在
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository 定义用户相关的数据库操作接口
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateWalletAddress(userID int64, address string) error
}

// MySQLUserRepository MySQL实现的用户仓库
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository 创建新的MySQL用户仓库实例
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// CreateUser 创建新用户
func (r *MySQLUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `
		INSERT INTO users (username, email, password_hash, wallet_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.Exec(query,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullable(user.WalletAddress),
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, err
	}
	return result.LastInsertId()
}

// GetUserByID 根据ID获取用户
func (r *MySQLUserRepository) GetUserByID(id int64) (*model.User, error) {
	return r.getUser("SELECT id, username, email, password_hash, wallet_address, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetUserByUsername 根据用户名获取用户
func (r *MySQLUserRepository) GetUserByUsername(username string) (*model.User, error) {
	return r.getUser("SELECT id, username, email, password_hash, wallet_address, created_at, updated_at FROM users WHERE username = ?", username)
}

// GetUserByEmail 根据邮箱获取用户
func (r *MySQLUserRepository) GetUserByEmail(email string) (*model.User, error) {
	return r.getUser("SELECT id, username, email, password_hash, wallet_address, created_at, updated_at FROM users WHERE email = ?", email)
}

func (r *MySQLUserRepository) getUser(query string, arg interface{}) (*model.User, error) {
	var user model.User
	var wallet sql.NullString
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&wallet,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if wallet.Valid {
		user.WalletAddress = wallet.String
	}
	return &user, nil
}

// UpdateWalletAddress 更新用户绑定的钱包地址
func (r *MySQLUserRepository) UpdateWalletAddress(userID int64, address string) error {
	_, err := r.db.Exec("UPDATE users SET wallet_address = ?, updated_at = ? WHERE id = ?",
		nullable(address), time.Now(), userID)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
