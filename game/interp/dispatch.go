package interp

// dispatch 指令代码到处理函数的映射。表中没有的代码（续行、块结束标记、0）为空操作。
var dispatch map[int]handler

func init() {
	dispatch = map[int]handler{
		CmdShowText:            (*Interpreter).cmdShowText,
		CmdShowChoices:         (*Interpreter).cmdShowChoices,
		CmdInputNumber:         (*Interpreter).cmdInputNumber,
		CmdSelectItem:          (*Interpreter).cmdSelectItem,
		CmdShowScrollingText:   (*Interpreter).cmdShowScrollingText,
		CmdComment:             (*Interpreter).cmdComment,
		CmdConditionalBranch:   (*Interpreter).cmdConditionalBranch,
		CmdLoop:                (*Interpreter).cmdLoop,
		CmdBreakLoop:           (*Interpreter).cmdBreakLoop,
		CmdExitEvent:           (*Interpreter).cmdExitEvent,
		CmdCallCommonEvent:     (*Interpreter).cmdCallCommonEvent,
		CmdLabel:               (*Interpreter).cmdLabel,
		CmdJumpToLabel:         (*Interpreter).cmdJumpToLabel,
		CmdControlSwitches:     (*Interpreter).cmdControlSwitches,
		CmdControlVariables:    (*Interpreter).cmdControlVariables,
		CmdControlSelfSwitch:   (*Interpreter).cmdControlSelfSwitch,
		CmdControlTimer:        (*Interpreter).cmdControlTimer,
		CmdChangeGold:          (*Interpreter).cmdChangeGold,
		CmdChangeItems:         (*Interpreter).cmdChangeItems,
		CmdChangeWeapons:       (*Interpreter).cmdChangeWeapons,
		CmdChangeArmors:        (*Interpreter).cmdChangeArmors,
		CmdChangePartyMember:   (*Interpreter).cmdChangePartyMember,
		CmdChangeBattleBGM:     (*Interpreter).cmdChangeBattleBGM,
		CmdChangeVictoryME:     (*Interpreter).cmdChangeVictoryME,
		CmdChangeSaveAccess:    (*Interpreter).cmdChangeSaveAccess,
		CmdChangeMenuAccess:    (*Interpreter).cmdChangeMenuAccess,
		CmdChangeEncounter:     (*Interpreter).cmdChangeEncounter,
		CmdChangeFormation:     (*Interpreter).cmdChangeFormation,
		CmdChangeWindowColor:   (*Interpreter).cmdChangeWindowColor,
		CmdChangeDefeatME:      (*Interpreter).cmdChangeDefeatME,
		CmdChangeVehicleBGM:    (*Interpreter).cmdChangeVehicleBGM,
		CmdTransferPlayer:      (*Interpreter).cmdTransferPlayer,
		CmdSetVehicleLocation:  (*Interpreter).cmdSetVehicleLocation,
		CmdSetEventLocation:    (*Interpreter).cmdSetEventLocation,
		CmdScrollMap:           (*Interpreter).cmdScrollMap,
		CmdSetMoveRoute:        (*Interpreter).cmdSetMoveRoute,
		CmdGetOnOffVehicle:     (*Interpreter).cmdGetOnOffVehicle,
		CmdChangeTransparency:  (*Interpreter).cmdChangeTransparency,
		CmdShowAnimation:       (*Interpreter).cmdShowAnimation,
		CmdShowBalloon:         (*Interpreter).cmdShowBalloon,
		CmdEraseEvent:          (*Interpreter).cmdEraseEvent,
		CmdChangeFollowers:     (*Interpreter).cmdChangeFollowers,
		CmdGatherFollowers:     (*Interpreter).cmdGatherFollowers,
		CmdFadeoutScreen:       (*Interpreter).cmdFadeoutScreen,
		CmdFadeinScreen:        (*Interpreter).cmdFadeinScreen,
		CmdTintScreen:          (*Interpreter).cmdTintScreen,
		CmdFlashScreen:         (*Interpreter).cmdFlashScreen,
		CmdShakeScreen:         (*Interpreter).cmdShakeScreen,
		CmdWait:                (*Interpreter).cmdWait,
		CmdShowPicture:         (*Interpreter).cmdShowPicture,
		CmdMovePicture:         (*Interpreter).cmdMovePicture,
		CmdRotatePicture:       (*Interpreter).cmdRotatePicture,
		CmdTintPicture:         (*Interpreter).cmdTintPicture,
		CmdErasePicture:        (*Interpreter).cmdErasePicture,
		CmdSetWeather:          (*Interpreter).cmdSetWeather,
		CmdPlayBGM:             (*Interpreter).cmdPlayBGM,
		CmdFadeoutBGM:          (*Interpreter).cmdFadeoutBGM,
		CmdSaveBGM:             (*Interpreter).cmdSaveBGM,
		CmdResumeBGM:           (*Interpreter).cmdResumeBGM,
		CmdPlayBGS:             (*Interpreter).cmdPlayBGS,
		CmdFadeoutBGS:          (*Interpreter).cmdFadeoutBGS,
		CmdPlayME:              (*Interpreter).cmdPlayME,
		CmdPlaySE:              (*Interpreter).cmdPlaySE,
		CmdStopSE:              (*Interpreter).cmdStopSE,
		CmdPlayMovie:           (*Interpreter).cmdPlayMovie,
		CmdChangeMapNameDisp:   (*Interpreter).cmdChangeMapNameDisplay,
		CmdChangeTileset:       (*Interpreter).cmdChangeTileset,
		CmdChangeBattleBack:    (*Interpreter).cmdChangeBattleBack,
		CmdChangeParallax:      (*Interpreter).cmdChangeParallax,
		CmdGetLocationInfo:     (*Interpreter).cmdGetLocationInfo,
		CmdBattleProcessing:    (*Interpreter).cmdBattleProcessing,
		CmdShopProcessing:      (*Interpreter).cmdShopProcessing,
		CmdNameInput:           (*Interpreter).cmdNameInput,
		CmdChangeHP:            (*Interpreter).cmdChangeHP,
		CmdChangeMP:            (*Interpreter).cmdChangeMP,
		CmdChangeState:         (*Interpreter).cmdChangeState,
		CmdRecoverAll:          (*Interpreter).cmdRecoverAll,
		CmdChangeEXP:           (*Interpreter).cmdChangeEXP,
		CmdChangeLevel:         (*Interpreter).cmdChangeLevel,
		CmdChangeParameter:     (*Interpreter).cmdChangeParameter,
		CmdChangeSkill:         (*Interpreter).cmdChangeSkill,
		CmdChangeEquipment:     (*Interpreter).cmdChangeEquipment,
		CmdChangeName:          (*Interpreter).cmdChangeName,
		CmdChangeClass:         (*Interpreter).cmdChangeClass,
		CmdChangeActorImages:   (*Interpreter).cmdChangeActorImages,
		CmdChangeVehicleImage:  (*Interpreter).cmdChangeVehicleImage,
		CmdChangeNickname:      (*Interpreter).cmdChangeNickname,
		CmdChangeProfile:       (*Interpreter).cmdChangeProfile,
		CmdChangeTP:            (*Interpreter).cmdChangeTP,
		CmdChangeEnemyHP:       (*Interpreter).cmdChangeEnemyHP,
		CmdChangeEnemyMP:       (*Interpreter).cmdChangeEnemyMP,
		CmdChangeEnemyState:    (*Interpreter).cmdChangeEnemyState,
		CmdEnemyRecoverAll:     (*Interpreter).cmdEnemyRecoverAll,
		CmdEnemyAppear:         (*Interpreter).cmdEnemyAppear,
		CmdEnemyTransform:      (*Interpreter).cmdEnemyTransform,
		CmdShowBattleAnimation: (*Interpreter).cmdShowBattleAnimation,
		CmdForceAction:         (*Interpreter).cmdForceAction,
		CmdAbortBattle:         (*Interpreter).cmdAbortBattle,
		CmdChangeEnemyTP:       (*Interpreter).cmdChangeEnemyTP,
		CmdOpenMenu:            (*Interpreter).cmdOpenMenu,
		CmdOpenSave:            (*Interpreter).cmdOpenSave,
		CmdGameOver:            (*Interpreter).cmdGameOver,
		CmdReturnToTitle:       (*Interpreter).cmdReturnToTitle,
		CmdScript:              (*Interpreter).cmdScript,
		CmdPluginCommand:       (*Interpreter).cmdPluginCommand,
		CmdWhenBranch:          (*Interpreter).cmdWhen,
		CmdWhenCancel:          (*Interpreter).cmdWhenCancel,
		CmdElseBranch:          (*Interpreter).cmdElse,
		CmdRepeatAbove:         (*Interpreter).cmdRepeatAbove,
		CmdIfWin:               (*Interpreter).cmdIfWin,
		CmdIfEscape:            (*Interpreter).cmdIfEscape,
		CmdIfLose:              (*Interpreter).cmdIfLose,
	}
}

// handles 报告 code 是否有处理函数。
func handles(code int) bool {
	_, ok := dispatch[code]
	return ok
}
