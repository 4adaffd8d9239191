package interp

// ---- RMMV 事件指令代码常量 ----

const (
	CmdEnd                 = 0
	CmdShowText            = 101
	CmdShowChoices         = 102
	CmdInputNumber         = 103
	CmdSelectItem          = 104
	CmdShowScrollingText   = 105
	CmdComment             = 108
	CmdConditionalBranch   = 111
	CmdLoop                = 112
	CmdBreakLoop           = 113
	CmdExitEvent           = 115
	CmdCallCommonEvent     = 117
	CmdLabel               = 118
	CmdJumpToLabel         = 119
	CmdControlSwitches     = 121
	CmdControlVariables    = 122
	CmdControlSelfSwitch   = 123
	CmdControlTimer        = 124
	CmdChangeGold          = 125
	CmdChangeItems         = 126
	CmdChangeWeapons       = 127
	CmdChangeArmors        = 128
	CmdChangePartyMember   = 129
	CmdChangeBattleBGM     = 132
	CmdChangeVictoryME     = 133
	CmdChangeSaveAccess    = 134
	CmdChangeMenuAccess    = 135
	CmdChangeEncounter     = 136
	CmdChangeFormation     = 137
	CmdChangeWindowColor   = 138
	CmdChangeDefeatME      = 139
	CmdChangeVehicleBGM    = 140
	CmdTransferPlayer      = 201
	CmdSetVehicleLocation  = 202
	CmdSetEventLocation    = 203
	CmdScrollMap           = 204
	CmdSetMoveRoute        = 205
	CmdGetOnOffVehicle     = 206
	CmdChangeTransparency  = 211
	CmdShowAnimation       = 212
	CmdShowBalloon         = 213
	CmdEraseEvent          = 214
	CmdChangeFollowers     = 216
	CmdGatherFollowers     = 217
	CmdFadeoutScreen       = 221
	CmdFadeinScreen        = 222
	CmdTintScreen          = 223
	CmdFlashScreen         = 224
	CmdShakeScreen         = 225
	CmdWait                = 230
	CmdShowPicture         = 231
	CmdMovePicture         = 232
	CmdRotatePicture       = 233
	CmdTintPicture         = 234
	CmdErasePicture        = 235
	CmdSetWeather          = 236
	CmdPlayBGM             = 241
	CmdFadeoutBGM          = 242
	CmdSaveBGM             = 243
	CmdResumeBGM           = 244
	CmdPlayBGS             = 245
	CmdFadeoutBGS          = 246
	CmdPlayME              = 249
	CmdPlaySE              = 250
	CmdStopSE              = 251
	CmdPlayMovie           = 261
	CmdChangeMapNameDisp   = 281
	CmdChangeTileset       = 282
	CmdChangeBattleBack    = 283
	CmdChangeParallax      = 284
	CmdGetLocationInfo     = 285
	CmdBattleProcessing    = 301
	CmdShopProcessing      = 302
	CmdNameInput           = 303
	CmdChangeHP            = 311
	CmdChangeMP            = 312
	CmdChangeState         = 313
	CmdRecoverAll          = 314
	CmdChangeEXP           = 315
	CmdChangeLevel         = 316
	CmdChangeParameter     = 317
	CmdChangeSkill         = 318
	CmdChangeEquipment     = 319
	CmdChangeName          = 320
	CmdChangeClass         = 321
	CmdChangeActorImages   = 322
	CmdChangeVehicleImage  = 323
	CmdChangeNickname      = 324
	CmdChangeProfile       = 325
	CmdChangeTP            = 326
	CmdChangeEnemyHP       = 331
	CmdChangeEnemyMP       = 332
	CmdChangeEnemyState    = 333
	CmdEnemyRecoverAll     = 334
	CmdEnemyAppear         = 335
	CmdEnemyTransform      = 336
	CmdShowBattleAnimation = 337
	CmdForceAction         = 339
	CmdAbortBattle         = 340
	CmdChangeEnemyTP       = 342
	CmdOpenMenu            = 351
	CmdOpenSave            = 352
	CmdGameOver            = 353
	CmdReturnToTitle       = 354
	CmdScript              = 355
	CmdPluginCommand       = 356

	CmdShowTextLine     = 401
	CmdWhenBranch       = 402 // 选项分支（When [n]）
	CmdWhenCancel       = 403 // 选项取消分支
	CmdChoicesEnd       = 404
	CmdScrollTextLine   = 405
	CmdCommentCont      = 408
	CmdElseBranch       = 411
	CmdConditionalEnd   = 412
	CmdRepeatAbove      = 413
	CmdMoveRouteCont    = 505
	CmdIfWin            = 601
	CmdIfEscape         = 602
	CmdIfLose           = 603
	CmdBattleEnd        = 604
	CmdShopItem         = 605
	CmdScriptCont       = 655
)

// 战斗结果（601/602/603 比较的值）。
const (
	BattleWin    = 0
	BattleEscape = 1
	BattleLose   = 2
)

// 载具类型（202/140/323 与条件分支 13）。
const (
	VehicleBoat    = 0
	VehicleShip    = 1
	VehicleAirship = 2
)
