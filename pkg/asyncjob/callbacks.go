package asyncjob

// Callbacks 按标签分发的回调集合
//
// 未设置的回调被忽略。回调只在主上下文中执行，执行前 Attachment 被更新为当前事件的附件。
type Callbacks[T any] struct {
	OnBegin    func()
	OnProgress func(progress int)
	OnSuccess  func(result T)
	OnFailure  func(err *JobError)
	OnCustom   func(key string, value any)

	attachment any
}

// Attachment 返回正在分发的事件的附件
func (c *Callbacks[T]) Attachment() any {
	return c.attachment
}

// dispatch 把事件分发到对应回调
func (c *Callbacks[T]) dispatch(e *Event[T]) {
	c.attachment = e.Attachment()

	switch e.Tag() {
	case TagBegin:
		if c.OnBegin != nil {
			c.OnBegin()
		}
	case TagProgress:
		if c.OnProgress != nil {
			c.OnProgress(e.progress)
		}
	case TagSuccess:
		if c.OnSuccess != nil {
			c.OnSuccess(e.success)
		}
	case TagFailure:
		if c.OnFailure != nil {
			c.OnFailure(e.failure)
		}
	case TagCustom:
		if c.OnCustom != nil {
			c.OnCustom(e.key, e.custom)
		}
	}
}
