package asyncjob

import (
	"fmt"
)

// ============================================================================
//                              Tag - 事件标签
// ============================================================================

// Tag 事件标签
type Tag uint8

const (
	// TagBegin 任务开始
	TagBegin Tag = iota + 1
	// TagProgress 任务进度
	TagProgress
	// TagSuccess 任务成功
	TagSuccess
	// TagFailure 任务失败
	TagFailure
	// TagCustom 自定义事件
	TagCustom
)

// 内置标签的保留键
const (
	KeyBegin    = "@begin"
	KeyProgress = "@progress"
	KeySuccess  = "@success"
	KeyFailure  = "@failure"
)

// String 返回标签的字符串表示
func (t Tag) String() string {
	switch t {
	case TagBegin:
		return "begin"
	case TagProgress:
		return "progress"
	case TagSuccess:
		return "success"
	case TagFailure:
		return "failure"
	case TagCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// reservedKey 返回内置标签的保留键
func (t Tag) reservedKey() string {
	switch t {
	case TagBegin:
		return KeyBegin
	case TagProgress:
		return KeyProgress
	case TagSuccess:
		return KeySuccess
	case TagFailure:
		return KeyFailure
	default:
		return ""
	}
}

// ============================================================================
//                              Event - 任务事件
// ============================================================================

// Event 异步任务事件
//
// Event 创建后不可变，同一个 *Event 可能被多个观察者收到。
type Event[T any] struct {
	tag        Tag
	key        string
	attachment any

	progress int
	success  T
	failure  *JobError
	custom   any
}

// Tag 返回事件标签
func (e *Event[T]) Tag() Tag {
	return e.tag
}

// Key 返回事件键
//
// 自定义事件返回发布时的 key，内置事件返回保留键（KeyBegin 等）。
func (e *Event[T]) Key() string {
	return e.key
}

// Attachment 返回发布时附带的附件
func (e *Event[T]) Attachment() any {
	return e.attachment
}

// IsCustom 返回是否为自定义事件
func (e *Event[T]) IsCustom() bool {
	return e.tag == TagCustom
}

// Progress 返回进度，标签不是 TagProgress 时 panic
func (e *Event[T]) Progress() int {
	e.mustBe(TagProgress)
	return e.progress
}

// Success 返回结果，标签不是 TagSuccess 时 panic
func (e *Event[T]) Success() T {
	e.mustBe(TagSuccess)
	return e.success
}

// Failure 返回失败信息，标签不是 TagFailure 时 panic
func (e *Event[T]) Failure() *JobError {
	e.mustBe(TagFailure)
	return e.failure
}

// Custom 返回自定义载荷，标签不是 TagCustom 时 panic
func (e *Event[T]) Custom() any {
	e.mustBe(TagCustom)
	return e.custom
}

// String 返回可读表示
func (e *Event[T]) String() string {
	switch e.tag {
	case TagBegin:
		return "begin"
	case TagProgress:
		return fmt.Sprintf("progress(%d)", e.progress)
	case TagSuccess:
		return fmt.Sprintf("success(%v)", e.success)
	case TagFailure:
		return fmt.Sprintf("failure(%s)", e.failure)
	case TagCustom:
		return fmt.Sprintf("custom(%s=%v)", e.key, e.custom)
	default:
		return e.tag.String()
	}
}

// ============================================================================
//                              守卫
// ============================================================================

// HandleBegin 标签为 TagBegin 时执行 fn
func (e *Event[T]) HandleBegin(fn func()) {
	if e.tag == TagBegin {
		fn()
	}
}

// HandleProgress 标签为 TagProgress 时执行 fn
func (e *Event[T]) HandleProgress(fn func(progress int)) {
	if e.tag == TagProgress {
		fn(e.progress)
	}
}

// HandleSuccess 标签为 TagSuccess 时执行 fn
func (e *Event[T]) HandleSuccess(fn func(result T)) {
	if e.tag == TagSuccess {
		fn(e.success)
	}
}

// HandleFailure 标签为 TagFailure 时执行 fn
func (e *Event[T]) HandleFailure(fn func(err *JobError)) {
	if e.tag == TagFailure {
		fn(e.failure)
	}
}

// HandleCustom 自定义事件的 key 匹配时执行 fn
func (e *Event[T]) HandleCustom(key string, fn func(value any)) {
	if e.tag == TagCustom && e.key == key {
		fn(e.custom)
	}
}

// HandleAnyCustom 任意自定义事件都执行 fn
func (e *Event[T]) HandleAnyCustom(fn func(key string, value any)) {
	if e.tag == TagCustom {
		fn(e.key, e.custom)
	}
}

func (e *Event[T]) mustBe(tag Tag) {
	if e.tag != tag {
		usagePanic("event is %s, not %s", e, tag)
	}
}

// ============================================================================
//                              构造
// ============================================================================

func newEvent[T any](tag Tag, attachment any) *Event[T] {
	return &Event[T]{
		tag:        tag,
		key:        tag.reservedKey(),
		attachment: attachment,
	}
}
