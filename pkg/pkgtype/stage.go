// Package pkgtype holds the small closed enumerations shared by every
// package in this module: the PSM stage identifier, the transaction goal,
// the trigger sense flags and the callback kinds the notification adapter
// emits. Grounded on the stage/goal enums in original_source/lib/psm.c
// (pkgStage, pkgGoal) and rpmlib.h (rpmsenseFlags, rpmCallbackType).
package pkgtype

// Stage identifies one step of a PSM run. Stage is a closed enumeration;
// Create, Destroy and Undo are reserved names with empty bodies (see
// spec.md §9 open questions) carried forward from the original rpm source.
type Stage int

const (
	StageUnknown Stage = iota
	StageInit
	StagePre
	StageProcess
	StagePost
	StageUndo
	StageFini
	StageCreate
	StageDestroy
	StageTriggers
	StageImmedTriggers
	StageRPMDBAdd
	StageRPMDBRemove
)

func (s Stage) String() string {
	switch s {
	case StageUnknown:
		return "UNKNOWN"
	case StageInit:
		return "INIT"
	case StagePre:
		return "PRE"
	case StageProcess:
		return "PROCESS"
	case StagePost:
		return "POST"
	case StageUndo:
		return "UNDO"
	case StageFini:
		return "FINI"
	case StageCreate:
		return "CREATE"
	case StageDestroy:
		return "DESTROY"
	case StageTriggers:
		return "TRIGGERS"
	case StageImmedTriggers:
		return "IMMED_TRIGGERS"
	case StageRPMDBAdd:
		return "RPMDB_ADD"
	case StageRPMDBRemove:
		return "RPMDB_REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Goal is the transaction-element-level outcome a PSM run drives toward.
type Goal int

const (
	GoalInstall Goal = iota
	GoalErase
	GoalVerify
	GoalPretrans
	GoalPosttrans
)

// Name returns the fixed-width label used in log prefixes, mirroring
// pkgGoalString in the original source exactly (including the padding).
func (g Goal) Name() string {
	switch g {
	case GoalInstall:
		return "  install"
	case GoalErase:
		return "    erase"
	case GoalVerify:
		return "   verify"
	case GoalPretrans:
		return " pretrans"
	case GoalPosttrans:
		return "posttrans"
	default:
		return "  unknown"
	}
}

func (g Goal) String() string {
	switch g {
	case GoalInstall:
		return "install"
	case GoalErase:
		return "erase"
	case GoalVerify:
		return "verify"
	case GoalPretrans:
		return "pretrans"
	case GoalPosttrans:
		return "posttrans"
	default:
		return "unknown"
	}
}
