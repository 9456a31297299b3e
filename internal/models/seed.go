package models

import (
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedReferenceData 写入状态目录、流转图、部门/机台/工序类型与默认工艺路线。
// 幂等：已有数据时跳过对应分组。
func SeedReferenceData(db *gorm.DB) error {
	if err := seedDepartments(db); err != nil {
		return err
	}
	if err := seedMachinesAndProcessTypes(db); err != nil {
		return err
	}
	if err := seedStatusCatalog(db); err != nil {
		return err
	}
	if err := seedDefaultRouting(db); err != nil {
		return err
	}
	return nil
}

// InitDefaultOperator 初始化默认操作员账号
func InitDefaultOperator(db *gorm.DB, username, password string) error {
	var count int64
	db.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "operator"
	}
	if password == "" {
		password = "operator123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var planning Department
	db.Where("code = ?", constants.DepartmentPlanning).First(&planning)

	operator := Operator{
		Username:     username,
		DisplayName:  "Default Operator",
		PasswordHash: string(hash),
		DepartmentID: planning.ID,
		Permissions: StringArray{
			constants.PermissionTrackingWrite,
			constants.PermissionTrackingCancel,
			constants.PermissionTrackingHold,
			constants.PermissionDelayApprove,
			constants.PermissionShippingWrite,
		},
		IsActive: true,
	}
	if err := db.Create(&operator).Error; err != nil {
		return err
	}
	if password == "operator123" {
		logger.Warnw("default_operator_created_with_default_password", "username", username)
	}
	return nil
}

func seedDepartments(db *gorm.DB) error {
	var count int64
	db.Model(&Department{}).Count(&count)
	if count > 0 {
		return nil
	}
	departments := []Department{
		{Code: constants.DepartmentWeaving, Name: "Weaving", Sequence: 1, IsActive: true},
		{Code: constants.DepartmentFinishing, Name: "Finishing", Sequence: 2, IsActive: true},
		{Code: constants.DepartmentQuality, Name: "Quality Control", Sequence: 3, IsActive: true},
		{Code: constants.DepartmentStorage, Name: "Storage", Sequence: 4, IsActive: true},
		{Code: constants.DepartmentShipping, Name: "Shipping", Sequence: 5, IsActive: true},
		{Code: constants.DepartmentPlanning, Name: "Planning", Sequence: 9, IsActive: true},
	}
	return db.Create(&departments).Error
}

func seedMachinesAndProcessTypes(db *gorm.DB) error {
	var count int64
	db.Model(&ProcessType{}).Count(&count)
	if count > 0 {
		return nil
	}

	departmentIDs := map[string]uint{}
	var departments []Department
	if err := db.Find(&departments).Error; err != nil {
		return err
	}
	for _, d := range departments {
		departmentIDs[d.Code] = d.ID
	}

	processTypes := []ProcessType{
		{Code: constants.ProcessTypeWeaving, Name: "Weaving", CodePrefix: "WV", DepartmentID: departmentIDs[constants.DepartmentWeaving], IsActive: true},
		{Code: constants.ProcessTypeFinishing, Name: "Finishing", CodePrefix: "FN", DepartmentID: departmentIDs[constants.DepartmentFinishing], IsActive: true},
		{Code: constants.ProcessTypeQuality, Name: "Quality Check", CodePrefix: "QC", DepartmentID: departmentIDs[constants.DepartmentQuality], IsActive: true},
		{Code: constants.ProcessTypeStorage, Name: "Storage", CodePrefix: "ST", DepartmentID: departmentIDs[constants.DepartmentStorage], IsActive: true},
		{Code: constants.ProcessTypeShipping, Name: "Shipping", CodePrefix: "SH", DepartmentID: departmentIDs[constants.DepartmentShipping], IsActive: true},
	}
	if err := db.Create(&processTypes).Error; err != nil {
		return err
	}

	machines := []Machine{
		{Code: "LOOM-01", Name: "Rapier Loom 01", DepartmentID: departmentIDs[constants.DepartmentWeaving], IsActive: true},
		{Code: "LOOM-02", Name: "Rapier Loom 02", DepartmentID: departmentIDs[constants.DepartmentWeaving], IsActive: true},
		{Code: "STENTER-01", Name: "Stenter 01", DepartmentID: departmentIDs[constants.DepartmentFinishing], IsActive: true},
		{Code: "INSPECT-01", Name: "Inspection Table 01", DepartmentID: departmentIDs[constants.DepartmentQuality], IsActive: true},
	}
	return db.Create(&machines).Error
}

func seedStatusCatalog(db *gorm.DB) error {
	var count int64
	db.Model(&TrackingStatus{}).Count(&count)
	if count > 0 {
		return nil
	}

	statuses := []TrackingStatus{
		{Code: constants.StatusOrderCreated, Name: "Order Created", Color: "#9e9e9e", Sequence: 1, IsActive: true},
		{Code: constants.StatusWeavingStarted, Name: "Weaving Started", Color: "#2196f3", Sequence: 2, IsActive: true},
		{Code: constants.StatusWeavingCompleted, Name: "Weaving Completed", Color: "#1976d2", Sequence: 3, IsActive: true},
		{Code: constants.StatusFinishingStarted, Name: "Finishing Started", Color: "#00bcd4", Sequence: 4, IsActive: true},
		{Code: constants.StatusFinishingCompleted, Name: "Finishing Completed", Color: "#0097a7", Sequence: 5, IsActive: true},
		{Code: constants.StatusQualityCheck, Name: "Quality Check", Color: "#ff9800", Sequence: 6, IsActive: true},
		{Code: constants.StatusQualityApproved, Name: "Quality Approved", Color: "#8bc34a", Sequence: 7, IsActive: true},
		{Code: constants.StatusInStorage, Name: "In Storage", Color: "#795548", Sequence: 8, IsActive: true},
		{Code: constants.StatusShipped, Name: "Shipped", Color: "#3f51b5", Sequence: 9, IsActive: true},
		{Code: constants.StatusCompleted, Name: "Completed", Color: "#4caf50", Sequence: 10, IsActive: true},
		{Code: constants.StatusOnHold, Name: "On Hold", Color: "#ffc107", Sequence: 98, IsActive: true},
		{Code: constants.StatusCancelled, Name: "Cancelled", Color: "#f44336", Sequence: 99, IsActive: true},
	}
	if err := db.Create(&statuses).Error; err != nil {
		return err
	}

	ids := map[string]uint{}
	for _, s := range statuses {
		ids[s.Code] = s.ID
	}

	edge := func(from, to, description, permission string, automated bool) TrackingTransition {
		return TrackingTransition{
			FromStatusID:       ids[from],
			ToStatusID:         ids[to],
			Description:        description,
			IsAutomated:        automated,
			RequiredPermission: permission,
		}
	}

	transitions := []TrackingTransition{
		edge(constants.StatusOrderCreated, constants.StatusWeavingStarted, "start weaving", constants.PermissionTrackingWrite, false),
		edge(constants.StatusWeavingStarted, constants.StatusWeavingCompleted, "weaving done", constants.PermissionTrackingWrite, false),
		edge(constants.StatusWeavingCompleted, constants.StatusFinishingStarted, "start finishing", constants.PermissionTrackingWrite, false),
		edge(constants.StatusFinishingStarted, constants.StatusFinishingCompleted, "finishing done", constants.PermissionTrackingWrite, false),
		edge(constants.StatusFinishingCompleted, constants.StatusQualityCheck, "send to quality", constants.PermissionTrackingWrite, false),
		edge(constants.StatusQualityCheck, constants.StatusQualityApproved, "quality approved", constants.PermissionTrackingWrite, false),
		edge(constants.StatusQualityCheck, constants.StatusFinishingStarted, "rework in finishing", constants.PermissionTrackingWrite, false),
		edge(constants.StatusQualityApproved, constants.StatusInStorage, "moved to storage", constants.PermissionTrackingWrite, false),
		edge(constants.StatusInStorage, constants.StatusShipped, "shipped", constants.PermissionShippingWrite, false),
		edge(constants.StatusShipped, constants.StatusCompleted, "order completed", "", true),
	}

	// ON_HOLD / CANCELLED 分支：流水线中每个进行中的状态都可挂起或取消
	branchSources := []string{
		constants.StatusOrderCreated,
		constants.StatusWeavingStarted,
		constants.StatusWeavingCompleted,
		constants.StatusFinishingStarted,
		constants.StatusFinishingCompleted,
		constants.StatusQualityCheck,
		constants.StatusQualityApproved,
		constants.StatusInStorage,
	}
	for _, from := range branchSources {
		transitions = append(transitions,
			edge(from, constants.StatusOnHold, "put on hold", constants.PermissionTrackingHold, false),
			edge(from, constants.StatusCancelled, "cancel order", constants.PermissionTrackingCancel, true),
		)
		transitions = append(transitions,
			edge(constants.StatusOnHold, from, "resume from hold", constants.PermissionTrackingHold, false),
		)
	}

	return db.Create(&transitions).Error
}

func seedDefaultRouting(db *gorm.DB) error {
	var count int64
	db.Model(&ProcessRouting{}).Count(&count)
	if count > 0 {
		return nil
	}

	departmentIDs := map[string]uint{}
	var departments []Department
	if err := db.Find(&departments).Error; err != nil {
		return err
	}
	for _, d := range departments {
		departmentIDs[d.Code] = d.ID
	}
	processTypeIDs := map[string]uint{}
	var processTypes []ProcessType
	if err := db.Find(&processTypes).Error; err != nil {
		return err
	}
	for _, p := range processTypes {
		processTypeIDs[p.Code] = p.ID
	}

	routing := ProcessRouting{Code: "RT-DEFAULT", Name: "Default 3-step routing", IsDefault: true, IsActive: true}
	if err := db.Create(&routing).Error; err != nil {
		return err
	}
	steps := []RoutingStep{
		{RoutingID: routing.ID, StepOrder: 1, StepLabel: "Weaving", DepartmentID: departmentIDs[constants.DepartmentWeaving], ProcessTypeID: processTypeIDs[constants.ProcessTypeWeaving]},
		{RoutingID: routing.ID, StepOrder: 2, StepLabel: "Finishing", DepartmentID: departmentIDs[constants.DepartmentFinishing], ProcessTypeID: processTypeIDs[constants.ProcessTypeFinishing]},
		{RoutingID: routing.ID, StepOrder: 3, StepLabel: "Quality Check", DepartmentID: departmentIDs[constants.DepartmentQuality], ProcessTypeID: processTypeIDs[constants.ProcessTypeQuality]},
	}
	return db.Create(&steps).Error
}
