package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
)

// ContentHash 卡片内容指纹:详情链接+图片+标题+价格文本
// 虚拟滚动会把同一个物理节点复用给不同商品,按节点缓存"已处理"会漏掉换绑进来的新商品,
// 按内容哈希判断才是对的
func ContentHash(v *dom.ItemView) string {
	h := sha256.New()
	h.Write([]byte(strings.Join([]string{v.DetailHref, v.ImageURL, v.Title, v.PriceText}, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}

// ChangeDetector 维护每个物理节点最后一次看到的内容哈希
// 条目按节点覆盖写入(不追加),上限天然受视口内节点池大小约束
type ChangeDetector struct {
	lastSeen map[string]string
}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{lastSeen: make(map[string]string)}
}

// Observe 记录节点本次的内容哈希
// 已有旧哈希且不同: 返回true(节点被复用,内容已换)并覆盖;否则存入(若缺)并返回false
func (cd *ChangeDetector) Observe(nodeID, hash string) bool {
	prev, ok := cd.lastSeen[nodeID]
	cd.lastSeen[nodeID] = hash
	return ok && prev != hash
}
