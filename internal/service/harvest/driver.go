package harvest

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/param"
)

// State 滚动分页驱动器的状态
type State string

const (
	StateIdle                 State = "Idle"
	StateInitialScan          State = "InitialScan"
	StateScrolling            State = "Scrolling"
	StateWaitingForEnrichment State = "WaitingForEnrichment"
	StateConverged            State = "Converged"
	StateStalled              State = "Stalled"
	StateExhausted            State = "Exhausted"
)

// Driver 滚动分页驱动器
// 每轮迭代:按视口高度乘自适应倍率滚动一步,调用协调器轮询可见行,
// 以工作集净增长(不是元素数)衡量进度。连续无增长达到阈值后,
// 恰好做一次硬跳到底,页面高度仍不增长就优雅收敛,绝不算错误
type Driver struct {
	source      dom.ItemSource
	coordinator *Coordinator
	store       *Store
	params      *param.Harvest

	state   State
	running atomic.Bool

	iteration      int
	noGrowth       int
	forcedScrolls  int
	stepMultiplier float64
	heightStatic   int
	lastDocHeight  float64
}

func NewDriver(source dom.ItemSource, coordinator *Coordinator, store *Store, params *param.Harvest) *Driver {
	return &Driver{
		source:         source,
		coordinator:    coordinator,
		store:          store,
		params:         params,
		state:          StateIdle,
		stepMultiplier: params.InitialStepRatio,
	}
}

func (d *Driver) State() State {
	return d.state
}

// Stop 外部停止请求,在下一个轮询间隔内生效
func (d *Driver) Stop() {
	d.running.Store(false)
}

// Running 驱动器取消标志,协调器在每个挂起点之后也检查它
func (d *Driver) Running() *atomic.Bool {
	return &d.running
}

// Run 执行一次完整的采集会话,返回终态
// 终态只有三种:Converged(收敛/达标)、Exhausted(迭代预算用尽)、Stalled(外部停止或页面不可读)
func (d *Driver) Run() (State, error) {
	d.running.Store(true)
	d.iteration = 0
	d.noGrowth = 0
	d.forcedScrolls = 0
	d.heightStatic = 0
	d.stepMultiplier = d.params.InitialStepRatio

	// 首轮只扫描不滚动
	d.setState(StateInitialScan)
	if _, err := d.coordinator.CollectVisible(&d.running); err != nil {
		d.setState(StateStalled)
		return d.state, err
	}
	d.lastDocHeight, _ = d.source.DocumentHeight()

	for {
		if !d.running.Load() {
			d.setState(StateStalled)
			return d.state, nil
		}
		if d.targetReached() {
			d.setState(StateConverged)
			return d.state, nil
		}
		d.iteration++
		if d.params.MaxIterations > 0 && d.iteration > d.params.MaxIterations {
			d.setState(StateExhausted)
			return d.state, nil
		}

		added, err := d.step()
		if err != nil {
			d.setState(StateStalled)
			return d.state, err
		}
		if !d.running.Load() {
			d.setState(StateStalled)
			return d.state, nil
		}

		d.adaptStep(added)

		if added == 0 {
			d.noGrowth++
		} else {
			d.noGrowth = 0
		}

		docHeight, _ := d.source.DocumentHeight()
		if added == 0 && docHeight == d.lastDocHeight {
			d.heightStatic++
		} else {
			d.heightStatic = 0
		}
		d.lastDocHeight = docHeight

		// 硬跳到底之后连续两次确认页面确实没有更多内容
		if d.forcedScrolls > 0 && d.heightStatic >= 2 {
			d.setState(StateConverged)
			return d.state, nil
		}

		if d.noGrowth >= d.params.NoGrowthLimit {
			if d.forcedScrolls > 0 {
				// 已经硬跳过一次,仍然没有增长,带着已收集的结果优雅收敛
				d.setState(StateConverged)
				return d.state, nil
			}
			grown, err := d.forceJump()
			if err != nil {
				d.setState(StateStalled)
				return d.state, err
			}
			if !grown {
				d.setState(StateConverged)
				return d.state, nil
			}
			d.noGrowth = 0
		}
	}
}

// step 一轮迭代:滚动一步,然后把协调器放到当前视口上
func (d *Driver) step() (int, error) {
	viewport, err := d.source.ViewportHeight()
	if err != nil {
		return 0, fmt.Errorf("获取视口高度失败: %w", err)
	}

	d.setState(StateScrolling)
	if err := d.source.ScrollBy(viewport * d.stepMultiplier); err != nil {
		return 0, err
	}
	time.Sleep(d.params.ScrollPause())
	if !d.running.Load() {
		return 0, nil
	}

	d.setState(StateWaitingForEnrichment)
	added, err := d.coordinator.CollectVisible(&d.running)
	if err != nil {
		return added, err
	}
	log.Printf("第 %d 轮迭代: 新增 %d 条, 工作集 %d 条, 步长倍率 %.2f",
		d.iteration, added, d.store.Size(), d.stepMultiplier)
	return added, nil
}

// forceJump 连续无增长后的一次性硬跳到底,逼出懒加载的尾部内容
// 返回页面高度是否增长
func (d *Driver) forceJump() (bool, error) {
	d.forcedScrolls++
	before, err := d.source.DocumentHeight()
	if err != nil {
		return false, fmt.Errorf("获取页面高度失败: %w", err)
	}
	log.Printf("连续 %d 轮无增长,硬跳到页面底部", d.noGrowth)
	if err := d.source.JumpToBottom(); err != nil {
		return false, err
	}
	time.Sleep(d.params.ScrollPause())
	if !d.running.Load() {
		return false, nil
	}
	after, err := d.source.DocumentHeight()
	if err != nil {
		return false, fmt.Errorf("获取页面高度失败: %w", err)
	}
	return after > before, nil
}

// adaptStep 自适应步长:增长多就放大,颗粒无收就缩小,始终夹在[min,max]内
func (d *Driver) adaptStep(added int) {
	switch {
	case added >= d.params.GrowthBoost:
		d.stepMultiplier *= 1.25
	case added == 0:
		d.stepMultiplier *= 0.8
	}
	if d.stepMultiplier < d.params.MinStepRatio {
		d.stepMultiplier = d.params.MinStepRatio
	}
	if d.stepMultiplier > d.params.MaxStepRatio {
		d.stepMultiplier = d.params.MaxStepRatio
	}
}

func (d *Driver) targetReached() bool {
	return d.params.TargetCount > 0 && d.store.Size() >= d.params.TargetCount
}

func (d *Driver) setState(s State) {
	d.state = s
	// 状态条是采集器唯一追加到页面上的东西,更新失败不影响采集
	_ = d.source.UpdateOverlay(&dom.Status{
		State:     string(s),
		Collected: d.store.Size(),
		Uploaded:  d.store.UploadedCount(),
	})
}
