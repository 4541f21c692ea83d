package academic

// Capability 调用方的操作权限令牌。
// 由认证层根据已验证的 Token 构造，显式传入每个写操作。
type Capability struct {
	privileged bool
	subject    string
}

// AdminCapability 管理员权限（可执行所有写操作）
func AdminCapability(subject string) Capability {
	return Capability{privileged: true, subject: subject}
}

// ViewerCapability 只读权限
func ViewerCapability() Capability {
	return Capability{}
}

// Privileged 是否允许写操作
func (c Capability) Privileged() bool { return c.privileged }

// Subject 令牌持有者标识（用于审计字段）
func (c Capability) Subject() string { return c.subject }

// Require 无写权限时返回 ErrUnauthorized
func (c Capability) Require() error {
	if !c.privileged {
		return ErrUnauthorized
	}
	return nil
}
