package extract

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnresolvable 详情链接不含合规的数字后缀,该记录在上游被静默丢弃
var ErrUnresolvable = errors.New("无法从详情链接解析商品标识")

// 详情链接以>=6位的数字后缀结尾(可带.html),短于6位的一律拒绝,绝不猜测
var detailSuffixPattern = regexp.MustCompile(`(\d{6,})(?:\.html?)?$`)

// Fingerprint 从商品卡片的详情链接派生稳定标识
// 确定性且无状态:同一个链接任何时候都得到同一个标识
func Fingerprint(detailHref string) (string, error) {
	href := strings.TrimSpace(detailHref)
	if href == "" {
		return "", ErrUnresolvable
	}
	// 去掉query与hash,永久定位符只看路径部分
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	m := detailSuffixPattern.FindStringSubmatch(href)
	if m == nil {
		return "", ErrUnresolvable
	}
	return m[1], nil
}
