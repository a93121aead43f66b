// Package savoury 提供菜谱社区的实时/社交引擎能力
// @title Savoury Realtime API
// @version 1.0
// @description 菜谱社区实时引擎的 RESTful API 文档，包含用户、菜谱、点赞/评论/评分与通知模块
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 用户不存在 |
// @description | 10003 | 密码错误（登录失败） |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 10006 | 菜谱不存在 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 业务请求成功（根据 response.code 判断业务状态）
// @description - **401**: 认证失败（未登录/Token 无效/登录失败）
// @description - **500**: 服务器内部错误
// @description
// @description ## 实时事件
// @description WebSocket 入口 /ws?token=xxx；上行事件 join-user-room / join-recipe-room /
// @description leave-recipe-room / like-recipe / new-comment / rate-recipe，
// @description 下行事件 new-notification / notification-removed / comment-added / rating-updated。
//
// @termsOfService https://github.com/GioMjds/Savoury-sub000
//
// @contact.name API Support
// @contact.url https://github.com/GioMjds/Savoury-sub000/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 用于 WebSocket 等无法传 header 的场景
package savoury
