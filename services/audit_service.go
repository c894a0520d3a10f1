package services

import (
	"encoding/json"
	"log"
	"sync"

	"letterhead/models"

	"gorm.io/gorm"
)

// AuditContext identifies who performed an audited operation
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// AuditContextFor builds an AuditContext for a user
func AuditContextFor(user *models.User, ip, userAgent string) AuditContext {
	ctx := AuditContext{IPAddress: ip, UserAgent: userAgent}
	if user != nil {
		ctx.UserID = user.ID
		ctx.UserName = user.Name
		ctx.UserRole = user.Role
	}
	return ctx
}

// auditWG tracks in-flight audit writes so shutdown and tests can wait for them
var auditWG sync.WaitGroup

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	auditWG.Add(1)
	go func() {
		defer auditWG.Done()

		var oldJSON, newJSON string
		if oldValues != nil {
			if bytes, err := json.Marshal(oldValues); err == nil {
				oldJSON = string(bytes)
			}
		}
		if newValues != nil {
			if bytes, err := json.Marshal(newValues); err == nil {
				newJSON = string(bytes)
			}
		}

		userName := ctx.UserName
		if userName == "" {
			userName = "system"
		}
		userRole := ctx.UserRole
		if userRole == "" {
			userRole = "system"
		}

		auditLog := models.AuditLog{
			UserID:       ptrIfNotEmpty(ctx.UserID),
			UserName:     userName,
			UserRole:     userRole,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			ResourceName: resourceName,
			Action:       action,
			Description:  description,
			OldValues:    oldJSON,
			NewValues:    newJSON,
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// WaitForAuditWrites blocks until queued audit entries are written
func WaitForAuditWrites() {
	auditWG.Wait()
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetUserAuditLogs returns a user's most recent audit entries
func GetUserAuditLogs(db *gorm.DB, userID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.AuditLog
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
