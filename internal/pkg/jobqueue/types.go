package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeReportNotification JobType = "report_notification"
	JobTypeStorageDelete      JobType = "storage_delete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ReportNotificationJobPayload carries everything the moderator email needs
type ReportNotificationJobPayload struct {
	ReportUUID  string `json:"report_uuid"`
	TargetType  string `json:"target_type"` // "post" or "alert"
	TargetUUID  string `json:"target_uuid"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// ToMap converts the payload to a map for storage
func (p ReportNotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"report_uuid": p.ReportUUID,
		"target_type": p.TargetType,
		"target_uuid": p.TargetUUID,
		"reason":      p.Reason,
		"description": p.Description,
	}
}

// ReportNotificationJobPayloadFromMap creates a payload from a map
func ReportNotificationJobPayloadFromMap(data map[string]interface{}) (*ReportNotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ReportNotificationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// StorageDeleteJobPayload lists the object keys left behind by a taken-down post
type StorageDeleteJobPayload struct {
	PostUUID   string   `json:"post_uuid"`
	ObjectKeys []string `json:"object_keys"`
}

// ToMap converts the payload to a map for storage
func (p StorageDeleteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"post_uuid":   p.PostUUID,
		"object_keys": p.ObjectKeys,
	}
}

// StorageDeleteJobPayloadFromMap creates a payload from a map
func StorageDeleteJobPayloadFromMap(data map[string]interface{}) (*StorageDeleteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload StorageDeleteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
