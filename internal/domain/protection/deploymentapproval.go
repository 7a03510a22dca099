package protection

import (
	"fmt"
	"time"
)

// ApprovalStatus represents the verdict one approver recorded
type ApprovalStatus string

const (
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// String returns the string representation of the approval status
func (s ApprovalStatus) String() string {
	return string(s)
}

// DeploymentApproval records one actor's verdict on one deployment at a
// specific SHA. One actor holds at most one approval per deployment, so
// duplicate submissions never double count.
type DeploymentApproval struct {
	id           uint
	deploymentID uint
	approverID   uint
	sha          string
	status       ApprovalStatus
	comment      string
	// representedAsGroupID disambiguates which authorized group the approver
	// acted for when they qualify via more than one path. Zero means the
	// approver qualified directly.
	representedAsGroupID uint
	createdAt            time.Time
}

// NewDeploymentApproval records a verdict.
func NewDeploymentApproval(deploymentID, approverID uint, sha string, status ApprovalStatus, comment string, representedAsGroupID uint) (*DeploymentApproval, error) {
	if deploymentID == 0 {
		return nil, fmt.Errorf("deployment ID is required")
	}
	if approverID == 0 {
		return nil, fmt.Errorf("approver ID is required")
	}
	if sha == "" {
		return nil, fmt.Errorf("sha is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid approval status: %s", status)
	}

	return &DeploymentApproval{
		deploymentID:         deploymentID,
		approverID:           approverID,
		sha:                  sha,
		status:               status,
		comment:              comment,
		representedAsGroupID: representedAsGroupID,
		createdAt:            time.Now(),
	}, nil
}

// ReconstructDeploymentApproval reconstructs an approval from persistence.
func ReconstructDeploymentApproval(id, deploymentID, approverID uint, sha string, status ApprovalStatus, comment string, representedAsGroupID uint, createdAt time.Time) (*DeploymentApproval, error) {
	if id == 0 {
		return nil, fmt.Errorf("deployment approval ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid approval status: %s", status)
	}
	return &DeploymentApproval{
		id:                   id,
		deploymentID:         deploymentID,
		approverID:           approverID,
		sha:                  sha,
		status:               status,
		comment:              comment,
		representedAsGroupID: representedAsGroupID,
		createdAt:            createdAt,
	}, nil
}

// ID returns the approval ID
func (a *DeploymentApproval) ID() uint {
	return a.id
}

// SetID sets the approval ID (only for persistence layer use)
func (a *DeploymentApproval) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("deployment approval ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("deployment approval ID cannot be zero")
	}
	a.id = id
	return nil
}

// DeploymentID returns the deployment this verdict applies to
func (a *DeploymentApproval) DeploymentID() uint {
	return a.deploymentID
}

// ApproverID returns who recorded the verdict
func (a *DeploymentApproval) ApproverID() uint {
	return a.approverID
}

// SHA returns the commit the verdict was recorded against
func (a *DeploymentApproval) SHA() string {
	return a.sha
}

// Status returns the verdict
func (a *DeploymentApproval) Status() ApprovalStatus {
	return a.status
}

// Comment returns the optional approver comment
func (a *DeploymentApproval) Comment() string {
	return a.comment
}

// RepresentedAsGroupID returns the group the approver acted for, zero when
// they qualified directly
func (a *DeploymentApproval) RepresentedAsGroupID() uint {
	return a.representedAsGroupID
}

// CreatedAt returns when the verdict was recorded
func (a *DeploymentApproval) CreatedAt() time.Time {
	return a.createdAt
}
